package directory

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/directory/entity"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
)

// Collections names the collection behind each record type.
type Collections struct {
	Shelters   string
	Services   string
	BedAmounts string
}

// Mount registers /shelter, /service and /bed-amount on mux.
func Mount(mux *http.ServeMux, s store.Store, cols Collections, protect func(http.Handler) http.Handler, logger *zap.SugaredLogger) {
	shelters := NewRecordService[entity.Shelter](s, cols.Shelters, "shelter", logger)
	services := NewRecordService[entity.Service](s, cols.Services, "service", logger)
	beds := NewRecordService[entity.BedAmount](s, cols.BedAmounts, "bed amount", logger)

	NewHandler(shelters, "/shelter", logger).Routes(mux, protect)
	NewHandler(services, "/service", logger).Routes(mux, protect)
	NewHandler(beds, "/bed-amount", logger).Routes(mux, protect)
}
