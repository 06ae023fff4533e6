/*
 * Copyright (c) Joseph Prichard 2023
 */

package main

import (
	_ "embed"
	"log"
	"net/http"
	"os"

	"sketchbout/database"
	"sketchbout/game"
	"sketchbout/realtime"
	"sketchbout/servers"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

//go:embed words.txt
var words string

func getenv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment and defaults")
	}

	driver := getenv("DB_DRIVER", "sqlite3")
	dsn := getenv("DB_DSN", "file:sketchbout.db?cache=shared")
	addr := getenv("ADDR", ":8080")

	db, err := database.Open(driver, dsn)
	if err != nil {
		log.Fatalln(err)
	}
	defer db.Close()
	database.CreateSchema(db)

	wordBank := game.ParseWordBank(words)
	if wordBank.Size() == 0 {
		log.Fatalln("Word bank is empty, cannot run a game without words")
	}

	store := database.NewStore(db)
	registry := realtime.NewRegistry()
	events := realtime.NewDispatcher(registry)

	roomService := game.NewRoomService(store)
	orch := game.NewOrchestrator(store, store, store, store, wordBank, events)
	scorer := game.NewScorer(store, events)

	handlers := realtime.NewHandlers(registry, roomService, orch, scorer, events)
	router := realtime.NewRouter(handlers)

	telemetryServer := servers.NewTelemetryServer()
	socketServer := servers.NewSocketServer(registry, router, telemetryServer)
	roomsServer := servers.NewRoomsServer(roomService, events)
	gamesServer := servers.NewGamesServer(orch)
	playerServer := servers.NewPlayerServer(store)

	r := mux.NewRouter()
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/rooms/create", roomsServer.CreateRoom)
	apiRouter.HandleFunc("/rooms/delete", roomsServer.DeleteRoom)
	apiRouter.HandleFunc("/rooms/get", roomsServer.GetRoom)
	apiRouter.HandleFunc("/rooms", roomsServer.GetRooms)
	apiRouter.HandleFunc("/games/create", gamesServer.CreateGame)
	apiRouter.HandleFunc("/games/round/start", gamesServer.StartRound)
	apiRouter.HandleFunc("/games/round/end", gamesServer.EndRound)
	apiRouter.HandleFunc("/games/drawer", gamesServer.AssignDrawer)
	apiRouter.HandleFunc("/games/word", gamesServer.SelectWord)
	apiRouter.HandleFunc("/games/active", gamesServer.GetGame)
	apiRouter.HandleFunc("/players/create", playerServer.Create)
	apiRouter.HandleFunc("/players/stats", playerServer.Get)
	apiRouter.HandleFunc("/players/leaderboard", playerServer.Leaderboard)
	apiRouter.HandleFunc("/telemetry/subscribe", telemetryServer.Subscribe)
	apiRouter.HandleFunc("/connect", socketServer.Connect)

	log.Println("Starting the server...")
	log.Fatal(http.ListenAndServe(addr, r))
}
