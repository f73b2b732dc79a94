package public

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rayve/wattwatchers-client/pkg/interval"
	"github.com/rayve/wattwatchers-client/pkg/rest"
)

// loadEnergy issues one request per window, sequentially and in order, and
// concatenates the per-window result arrays. The first failure aborts the
// whole load: already-fetched windows are discarded rather than surfaced as
// a partial series.
func (c *Client) loadEnergy(ctx context.Context, path, deviceID string, windows []interval.Interval, unit EnergyUnit, granularity interval.Granularity) ([]any, error) {
	var aggregate []any

	for _, window := range windows {
		query := url.Values{}
		query.Set("fromTs", strconv.FormatInt(window.Start, 10))
		query.Set("toTs", strconv.FormatInt(window.End, 10))
		query.Set("convert[energy]", string(unit))
		if granularity != "" {
			query.Set("granularity", string(granularity))
		}

		c.logger.Info().
			Str("device_id", deviceID).
			Int64("from_ts", window.Start).
			Int64("to_ts", window.End).
			Msg("Loading energy window")

		result, err := c.rest.Get(ctx, path, &rest.RequestOptions{Query: query})
		if err != nil {
			c.logger.Error().
				Err(err).
				Str("device_id", deviceID).
				Int64("from_ts", window.Start).
				Int64("to_ts", window.End).
				Msg("Energy window load failed")
			return nil, err
		}

		if result == nil {
			continue
		}

		entries, ok := result.([]any)
		if !ok {
			return nil, &rest.Error{
				Kind:    rest.KindTransport,
				Message: "expected array payload for energy window",
				Method:  http.MethodGet,
				URL:     path,
			}
		}

		aggregate = append(aggregate, entries...)
	}

	return aggregate, nil
}

func queryValues(key, value string) url.Values {
	query := url.Values{}
	query.Set(key, value)
	return query
}
