package directory

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
)

type dirFixture struct {
	mux    *http.ServeMux
	store  *store.MemoryStore
	bearer string
}

func newDirFixture(t *testing.T) dirFixture {
	t.Helper()
	tk, err := auth.NewTokens(auth.TokenConfig{Secret: []byte("dir-test-secret"), TTL: time.Hour})
	require.NoError(t, err)
	tok, err := tk.Issue(auth.Principal{ID: "u1", Username: "director"})
	require.NoError(t, err)

	ms := store.NewMemoryStore()
	mux := http.NewServeMux()
	Mount(mux, ms, Collections{Shelters: "shelters", Services: "services", BedAmounts: "bed_amounts"}, auth.RequireToken(tk, nil), nil)
	return dirFixture{mux: mux, store: ms, bearer: "Bearer " + tok.Value}
}

func TestShelterRoutes(t *testing.T) {
	f := newDirFixture(t)

	apitest.Handler(f.mux).Post("/shelter").
		JSON(`{"shelterName":"Harbor House","shelterInfo":"24h intake","shelterBedAmount":40}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.Handler(f.mux).Get("/shelter").Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.Handler(f.mux).Post("/shelter").
		Header("Authorization", f.bearer).
		JSON(`{"shelterName":"Harbor House","shelterInfo":"24h intake","shelterBedAmount":40}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.shelterName", "Harbor House")).
		Assert(jsonpath.Present("$.id")).
		End()

	shelters, err := NewRecordService[entity.Shelter](f.store, "shelters", "shelter", nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, shelters, 1)
	id := shelters[0].ID

	// single reads stay public
	apitest.Handler(f.mux).Get("/shelter/"+id).Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.shelterBedAmount", float64(40))).
		End()

	apitest.Handler(f.mux).Put("/shelter/"+id).
		Header("Authorization", f.bearer).
		JSON(`{"shelterBedAmount":12}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.shelterBedAmount", float64(12))).
		Assert(jsonpath.Equal("$.shelterInfo", "24h intake")).
		End()

	apitest.Handler(f.mux).Get("/shelter").Header("Authorization", f.bearer).Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		End()

	apitest.Handler(f.mux).Delete("/shelter/"+id).
		Header("Authorization", f.bearer).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", id)).
		End()

	apitest.Handler(f.mux).Get("/shelter/"+id).Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error", "shelter not found")).
		End()
}

func TestServiceAndBedAmountRoutes(t *testing.T) {
	f := newDirFixture(t)

	apitest.Handler(f.mux).Post("/service").
		Header("Authorization", f.bearer).
		JSON(`{"serviceName":"Meals"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Contains("$.error", "serviceDescription is required")).
		End()

	apitest.Handler(f.mux).Post("/service").
		Header("Authorization", f.bearer).
		JSON(`{"serviceName":"Meals","serviceDescription":"Hot dinner"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	apitest.Handler(f.mux).Post("/bed-amount").
		Header("Authorization", f.bearer).
		JSON(`{"bedListingAmount":10,"updatedBedAmount":8,"updatingUserId":"u1","updatingShelterId":"s1","updatingServiceId":"v1"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.updatedBedAmount", float64(8))).
		End()

	apitest.Handler(f.mux).Post("/bed-amount").
		Header("Authorization", f.bearer).
		Body(`[1,2]`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "invalid payload")).
		End()

	apitest.Handler(f.mux).Delete("/service/missing").
		Header("Authorization", f.bearer).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error", "service not found")).
		End()
}
