package adminfn_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/almanar-edu/almanar/internal/roles"
)

func TestBootstrapRequiresAuthorization(t *testing.T) {
	f := newFixture()

	res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "", "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.JSONEq(t, `{"error":"Authorization required"}`, res.Body.String())

	res = f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "bogus-token", "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.JSONEq(t, `{"error":"Invalid session"}`, res.Body.String())

	require.Empty(t, f.store.assignments)
}

func TestBootstrapFirstCallerWins(t *testing.T) {
	f := newFixture()
	userID := f.addSession("first")

	res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "first", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"success":true,"role":"super_admin"}`, res.Body.String())

	require.Len(t, f.store.assignments, 1)
	require.Equal(t, userID, f.store.assignments[0].UserID)
	require.Equal(t, roles.RoleSuperAdmin, f.store.assignments[0].Role)
}

func TestBootstrapIdempotentOncePopulated(t *testing.T) {
	f := newFixture()
	f.addSession("first")
	f.addSession("second")

	res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "first", "")
	require.Equal(t, http.StatusOK, res.Code)

	// Any later caller, including the winner itself, gets the idempotent
	// success response and no extra row.
	for _, token := range []string{"second", "first"} {
		res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", token, "")
		require.Equal(t, http.StatusOK, res.Code)
		require.JSONEq(t, `{"status":"already_initialized"}`, res.Body.String())
	}
	require.Len(t, f.store.assignments, 1)
}

func TestBootstrapSingleWinnerUnderConcurrency(t *testing.T) {
	const callers = 16

	f := newFixture()
	for i := 0; i < callers; i++ {
		f.addSession(fmt.Sprintf("caller-%d", i))
	}

	results := make([]string, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", fmt.Sprintf("caller-%d", i), "")
			if res.Code != http.StatusOK {
				return fmt.Errorf("caller %d: unexpected status %d", i, res.Code)
			}
			results[i] = res.Body.String()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	wins := 0
	for _, body := range results {
		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &parsed))
		if parsed["success"] == true {
			wins++
		} else {
			require.Equal(t, "already_initialized", parsed["status"])
		}
	}
	require.Equal(t, 1, wins, "exactly one caller may become the first super admin")
	require.Len(t, f.store.assignments, 1)
}

func TestBootstrapStoreFailures(t *testing.T) {
	f := newFixture()
	f.addSession("first")

	f.store.countErr = errors.New("connection refused")
	res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "first", "")
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.JSONEq(t, `{"error":"Failed to check roles"}`, res.Body.String())

	f.store.countErr = nil
	f.store.assignErr = errors.New("insert failed")
	res = f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "first", "")
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.JSONEq(t, `{"error":"Failed to set admin role"}`, res.Body.String())
}

func TestBootstrapPreflight(t *testing.T) {
	f := newFixture()

	res := f.call(http.MethodOptions, "/functions/v1/bootstrap-admin", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "*", res.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, res.Header().Get("Access-Control-Allow-Headers"), "authorization")
	require.Contains(t, res.Header().Get("Access-Control-Allow-Headers"), "x-client-info")
}

func TestBootstrapLosingRace(t *testing.T) {
	f := newFixture()
	f.addSession("late")

	// Another caller slipped in between the count and the insert.
	f.store.assignments = append(f.store.assignments, roles.Assignment{UserID: uuid.New(), Role: roles.RoleSuperAdmin})
	f.store.countErr = nil

	res := f.call(http.MethodPost, "/functions/v1/bootstrap-admin", "late", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"status":"already_initialized"}`, res.Body.String())
	require.Len(t, f.store.assignments, 1)
}
