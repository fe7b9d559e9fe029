package smoke

import (
	"crypto/rand"
	"math/big"
)

// randomScore returns a score in 0..255 using crypto/rand.
func randomScore() uint8 {
	n, err := rand.Int(rand.Reader, big.NewInt(maxScore))
	if err != nil {
		return 0
	}
	return uint8(n.Int64())
}

// generatePayloads builds n create bodies. Every other game omits player3
// and player4 so the server's defaults are exercised too.
func generatePayloads(n int) []map[string]uint8 {
	payloads := make([]map[string]uint8, n)
	for i := range payloads {
		p := map[string]uint8{
			"player1": randomScore(),
			"player2": randomScore(),
		}
		if i%2 == 1 {
			p["player3"] = randomScore()
			p["player4"] = randomScore()
		}
		payloads[i] = p
	}
	return payloads
}
