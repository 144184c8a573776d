package util

import (
	"fmt"
	"math/rand"
	"time"
)

var adjectives = []string{
	"Lucky", "Bold", "Quiet", "Sly", "Brave", "Patient", "Reckless", "Lazy", "Happy", "Grumpy",
	"Red", "Golden", "Silver", "Jade", "Fuzzy", "Smiling", "Tall", "Grand", "Sleepy", "Swift",
}

var animals = []string{
	"Buffalo", "Tiger", "Crane", "Dragon", "Monkey", "Rooster", "Goat", "Horse", "Snake", "Rabbit",
	"Rat", "Ox", "Dog", "Pig", "Cat", "Gecko", "Heron", "Carp", "Turtle", "Phoenix",
}

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

// GetRandomName returns a random name by combining an adjective with an animal
// It is not safe for concurrent use
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
