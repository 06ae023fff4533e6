/*
 * Copyright (c) Joseph Prichard 2023
 */

package game

import (
	"math/rand"
	"strings"
)

// holds the words a drawer can be assigned, indexed by category
type WordBank struct {
	all   []string
	byCat map[string][]string
}

// parses a word bank from text where each line is either "category:word" or a bare word
func ParseWordBank(text string) *WordBank {
	bank := &WordBank{byCat: make(map[string][]string)}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		category := ""
		word := line
		if index := strings.Index(line, ":"); index >= 0 {
			category = strings.ToLower(strings.TrimSpace(line[:index]))
			word = strings.TrimSpace(line[index+1:])
		}
		if word == "" {
			continue
		}

		word = strings.ToLower(word)
		bank.all = append(bank.all, word)
		if category != "" {
			bank.byCat[category] = append(bank.byCat[category], word)
		}
	}

	return bank
}

func (bank *WordBank) Size() int {
	return len(bank.all)
}

func (bank *WordBank) Categories() []string {
	categories := make([]string, 0, len(bank.byCat))
	for category := range bank.byCat {
		categories = append(categories, category)
	}
	return categories
}

// picks a pseudo random word from the category, falling back to the whole bank
// when the category is unknown or empty
func (bank *WordBank) Pick(category string) string {
	words := bank.byCat[strings.ToLower(category)]
	if len(words) == 0 {
		words = bank.all
	}
	if len(words) == 0 {
		return ""
	}
	return words[rand.Intn(len(words))]
}
