package randstr

import "crypto/rand"

type Generator struct {
	letters []byte
}

// New builds a generator over the given alphabet. An alphabet whose length
// divides 256 maps bytes without modulo bias.
func New(letters []byte) *Generator {
	return &Generator{letters: letters}
}

func (g *Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is gone;
		// nothing sensible to degrade to.
		panic(err)
	}

	for i := range b {
		b[i] = g.letters[int(b[i])%len(g.letters)]
	}

	return string(b)
}
