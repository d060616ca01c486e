package membershiprepo

import (
	"testing"

	"github.com/campus-carpool/rides-api/internal/adapters/contracttest"
	membershiprepoport "github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
)

func TestContract_MemoryMembershipRepo(t *testing.T) {
	contracttest.RunMembershipRepo(t, func(t *testing.T) (membershiprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
