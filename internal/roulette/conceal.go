package roulette

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mroldan/giftroulette/internal/models"
)

// ConcealCost is the bcrypt work factor applied to recipient names before
// persistence. Concealment guards against a casual glance at the stored
// file, not against a determined offline attack.
const ConcealCost = bcrypt.DefaultCost

// Conceal returns a new assignment set with each recipient name replaced
// by its bcrypt hash. Giver names stay in clear. The input set is not
// mutated.
func Conceal(set models.AssignmentSet) (models.AssignmentSet, error) {
	pairings := make([]models.Pairing, 0, len(set.Pairings))
	for _, p := range set.Pairings {
		hashed, err := bcrypt.GenerateFromPassword([]byte(p.Recipient), ConcealCost)
		if err != nil {
			return models.AssignmentSet{}, fmt.Errorf("hash recipient for giver %s: %w", p.Giver, err)
		}
		pairings = append(pairings, models.Pairing{Giver: p.Giver, Recipient: string(hashed)})
	}
	return models.AssignmentSet{Pairings: pairings}, nil
}

// Verify reports whether hashed is the concealed form of name.
func Verify(name, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(name)) == nil
}
