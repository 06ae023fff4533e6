/*
 * Copyright (c) Joseph Prichard 2023
 */

package game

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	PointsPerSecond = 10
	MinGuessPoints  = 10
)

// awards time decayed points for correct guesses, at most once per guesser per round
type Scorer struct {
	scores ScoreStore
	notify Notifier
}

func NewScorer(scores ScoreStore, notify Notifier) *Scorer {
	return &Scorer{scores: scores, notify: notify}
}

// awarded points decay linearly with the time elapsed since the round started,
// with a floor so any valid guess is worth something
func calcGuessPoints(roundSecs int, elapsed time.Duration) int {
	remaining := roundSecs - int(elapsed.Seconds())
	if remaining < 0 {
		remaining = 0
	}
	points := remaining * PointsPerSecond
	if points < MinGuessPoints {
		points = MinGuessPoints
	}
	return points
}

// records a correct guess by the user on the game's current round and notifies the room.
// a guess outside an active drawing window, or a repeat guess in the same round, awards nothing
func (scorer *Scorer) AwardForCorrectGuess(g Game, userID uuid.UUID) {
	_, err := scorer.scores.FindScore(g.ID, userID, g.CurrentRound)
	if err == nil {
		// user already scored this round
		return
	}
	if !errors.Is(err, ErrScoreNotFound) {
		log.Printf("Failed to look up score for game %s user %s: %v", g.ID, userID, err)
		return
	}

	if g.Status != Drawing || g.RoundStart.IsZero() {
		return
	}

	points := calcGuessPoints(g.RoundSecs, time.Since(g.RoundStart))

	score := Score{
		GameID:    g.ID,
		UserID:    userID,
		Round:     g.CurrentRound,
		Points:    points,
		AwardedAt: time.Now(),
	}
	err = scorer.scores.InsertScore(score)
	if err != nil {
		log.Printf("Failed to insert score for game %s user %s: %v", g.ID, userID, err)
		return
	}

	total, err := scorer.scores.TotalPoints(g.ID, userID)
	if err != nil || total == 0 {
		// the record we just wrote may not be visible yet, show at least the award itself
		total = points
	}

	scorer.notify.ScoreUpdated(g.RoomID, g.ID, userID, points, total)
}
