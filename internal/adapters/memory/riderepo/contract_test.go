package riderepo

import (
	"testing"

	"github.com/campus-carpool/rides-api/internal/adapters/contracttest"
	riderepoport "github.com/campus-carpool/rides-api/internal/ports/out/riderepo"
)

func TestContract_MemoryRideRepo(t *testing.T) {
	contracttest.RunRideRepo(t, func(t *testing.T) (riderepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
