package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platform "github.com/Alias1177/Validator/internal/platform/http"
	"github.com/Alias1177/Validator/models"
)

// Client fetches labeled signal records from a dataset service over HTTP and
// implements models.Loader.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *platform.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new dataset Client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new dataset service client.
func NewClient(options ClientOptions) *Client {
	return &Client{
		apiKey:  options.APIKey,
		baseURL: options.BaseURL,
		httpClient: platform.NewClient(platform.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "dataset_client").Logger(),
	}
}

type recordsResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Records []struct {
		Timestamp  time.Time `json:"timestamp"`
		Instrument string    `json:"instrument"`
		Features   []float64 `json:"features"`
		Label      string    `json:"label"`
		Return     *float64  `json:"return"`
	} `json:"records"`
}

// Load fetches the instrument's records in [from, to), sorted by timestamp.
// Any transport or decoding failure is reported as ErrDataUnavailable so
// callers can distinguish unreachable data from bad data.
func (c *Client) Load(ctx context.Context, instrument string, from, to time.Time) (models.Dataset, error) {
	q := url.Values{}
	q.Set("instrument", instrument)
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	q.Set("apikey", c.apiKey)
	endpoint := fmt.Sprintf("%s/records?%s", c.baseURL, q.Encode())

	c.logger.Debug().Str("instrument", instrument).
		Time("from", from).Time("to", to).
		Msg("Fetching records")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("%w: reading response: %v", ErrDataUnavailable, err)
	}

	var data recordsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing records response")
		return models.Dataset{}, fmt.Errorf("%w: parsing response: %v", ErrDataUnavailable, err)
	}
	if data.Status == "error" {
		c.logger.Error().Str("message", data.Message).Msg("Dataset service error")
		return models.Dataset{}, fmt.Errorf("%w: %s", ErrDataUnavailable, data.Message)
	}
	if len(data.Records) == 0 {
		return models.Dataset{}, fmt.Errorf("%w: no records for %s in [%s, %s)",
			ErrDataUnavailable, instrument, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	records := make([]models.Record, 0, len(data.Records))
	for _, r := range data.Records {
		records = append(records, models.Record{
			Timestamp:  r.Timestamp,
			Instrument: r.Instrument,
			Features:   r.Features,
			Label:      r.Label,
			Return:     r.Return,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	ds := models.Dataset{Instrument: instrument, Records: records}
	if err := Validate(ds); err != nil {
		return models.Dataset{}, fmt.Errorf("service returned invalid dataset: %w", err)
	}

	c.logger.Debug().Int("count", ds.Len()).Msg("Fetched records")
	return ds, nil
}
