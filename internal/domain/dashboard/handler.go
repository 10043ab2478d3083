package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yaadhav-d/Hospital-Dashboard/internal/domain/patient"
	"github.com/yaadhav-d/Hospital-Dashboard/internal/platform/weather"
	"github.com/yaadhav-d/Hospital-Dashboard/pkg/pagination"
)

// WeatherStatus is the current ambient reading as shown on the dashboard.
// Available is false when the Temperature Source failed; the reading fields
// are zeroed in that case rather than the request failing.
type WeatherStatus struct {
	Available bool    `json:"available"`
	Condition string  `json:"condition,omitempty"`
	TempC     float64 `json:"temp_c,omitempty"`
	SpikeRisk bool    `json:"spike_risk"`
}

// Response is the full dashboard payload. DataAvailable is false when the
// live set could not be read; Metrics is then a zeroed aggregate.
type Response struct {
	DataAvailable bool          `json:"data_available"`
	Metrics       Snapshot      `json:"metrics"`
	Weather       WeatherStatus `json:"weather"`
}

type Handler struct {
	repo          patient.Repository
	sched         *patient.Scheduler
	temps         weather.Source
	log           zerolog.Logger
	snapshotLimit int
}

func NewHandler(repo patient.Repository, sched *patient.Scheduler, temps weather.Source, log zerolog.Logger, snapshotLimit int) *Handler {
	return &Handler{repo: repo, sched: sched, temps: temps, log: log, snapshotLimit: snapshotLimit}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/critical", h.ListCritical)
}

// GetDashboard serves one dashboard refresh. Each refresh is also a producer
// invocation: the lifecycle scheduler ticks before the read so the view stays
// live even when the standalone feed loop is not running.
func (h *Handler) GetDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.sched.Tick(ctx); err != nil {
		// A failed producer pass degrades to a stale view, never a 5xx.
		h.log.Error().Err(err).Msg("scheduler tick failed on dashboard refresh")
	}

	resp := Response{DataAvailable: true}

	records, err := h.repo.ListLive(ctx, h.snapshotLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("live set unavailable")
		resp.DataAvailable = false
		records = nil
	}
	resp.Metrics = Aggregate(records, DefaultInflowBucket)

	if reading, err := h.temps.Current(ctx); err != nil {
		h.log.Warn().Err(err).Msg("weather data unavailable")
	} else {
		resp.Weather = WeatherStatus{
			Available: true,
			Condition: reading.Condition,
			TempC:     reading.TempC,
			SpikeRisk: reading.SpikeRisk(),
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// ListPatients serves the raw live feed for tabular display.
func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.repo.ListLivePage(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "patient data unavailable")
	}
	if items == nil {
		items = []*patient.Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// ListCritical serves the level 1 and 2 subset for the alert table.
func (h *Handler) ListCritical(c echo.Context) error {
	records, err := h.repo.ListLive(c.Request().Context(), h.snapshotLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "patient data unavailable")
	}
	critical := []*patient.Patient{}
	for _, p := range records {
		if p.Critical() {
			critical = append(critical, p)
		}
	}
	return c.JSON(http.StatusOK, critical)
}
