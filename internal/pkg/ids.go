package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
)

const (
	roomIDMin   = 10000
	roomIDRange = 90000
)

var randReader = rand.Reader

// GenerateRoomID - generates a five digit room code.
func GenerateRoomID() (string, error) {
	n, err := rand.Int(randReader, big.NewInt(roomIDRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate room id: %w", err)
	}

	return strconv.FormatInt(n.Int64()+roomIDMin, 10), nil
}

// GeneratePeerID - generates a unique identifier for a session or connection.
func GeneratePeerID() string {
	return uuid.NewString()
}

// DefaultPlayerName - generates a readable name for players who did not pick one.
func DefaultPlayerName() string {
	return petname.Generate(2, "-")
}
