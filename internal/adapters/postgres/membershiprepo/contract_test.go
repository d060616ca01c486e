package membershiprepo

import (
	"testing"

	"github.com/campus-carpool/rides-api/internal/adapters/contracttest"
	"github.com/campus-carpool/rides-api/internal/adapters/postgres/testutil"
	membershiprepoport "github.com/campus-carpool/rides-api/internal/ports/out/membershiprepo"
)

func TestContract_PostgresMembershipRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunMembershipRepo(t, func(t *testing.T) (membershiprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
