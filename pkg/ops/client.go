// Package ops implements the client for the Wattwatchers ops/fleet API:
// firmware management, device status history, config audit logs, and comms
// online-state history.
package ops

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rayve/wattwatchers-client/pkg/logging"
	"github.com/rayve/wattwatchers-client/pkg/rest"
)

// Base URLs by deployment environment.
const (
	baseURLProduction = "https://api.ops.wattwatchers.net"
	baseURLStaging    = "https://stage.api.ops.wattwatchers.net"
)

// Config holds the ops API client configuration.
type Config struct {
	// Environment selects the API deployment (production, prod, staging).
	// Unknown values fall back to production.
	Environment string

	// BaseURL, when set, overrides the environment-derived base URL.
	BaseURL string

	// APIKey is the bearer token for the ops API.
	APIKey string

	// MaxRequestsPerSecond caps the outgoing request rate.
	MaxRequestsPerSecond int
}

// Client is the ops API client.
type Client struct {
	rest   *rest.Client
	logger zerolog.Logger
}

// New creates an ops API client.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLFor(cfg.Environment)
	}

	restClient, err := rest.New(rest.Config{
		BaseURL:              baseURL,
		APIKey:               cfg.APIKey,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create rest client: %w", err)
	}

	return &Client{
		rest:   restClient,
		logger: logging.NewLogger("ops-api"),
	}, nil
}

// BaseURLFor maps a deployment environment name to the ops API base URL.
// Unknown environments fall back to production.
func BaseURLFor(environment string) string {
	switch environment {
	case "production", "prod":
		return baseURLProduction
	case "staging":
		return baseURLStaging
	default:
		return baseURLProduction
	}
}

// Close releases the underlying transport resources.
func (c *Client) Close() error {
	return c.rest.Close()
}

// AvailableFirmwareVersions retrieves the firmware versions available for
// the device. includeIsActive additionally requests the is_active field.
func (c *Client) AvailableFirmwareVersions(ctx context.Context, deviceID string, includePrerelease, includeIsActive bool) (any, error) {
	query := url.Values{}
	query.Set("include-prerelease", strconv.FormatBool(includePrerelease))
	if includeIsActive {
		query.Set("fields", "is_active")
	}
	return c.rest.Get(ctx, "devices/"+deviceID+"/firmware/available",
		&rest.RequestOptions{Query: query})
}

// CurrentFirmwareVersion retrieves the firmware version currently installed
// on the device.
func (c *Client) CurrentFirmwareVersion(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID+"/firmware", nil)
}

// FirmwareHistory retrieves the firmware history of the device.
func (c *Client) FirmwareHistory(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID+"/firmware-history", nil)
}

// RequestFirmwareUpdate patches the desired firmware version of the device,
// initiating an OTA firmware update.
func (c *Client) RequestFirmwareUpdate(ctx context.Context, deviceID, desiredVersion string) (any, error) {
	c.logger.Info().
		Str("device_id", deviceID).
		Str("desired_version", desiredVersion).
		Msg("Requesting OTA firmware update")

	payload := map[string]any{
		"desiredVersion": desiredVersion,
	}
	return c.rest.Patch(ctx, "devices/"+deviceID+"/firmware",
		&rest.RequestOptions{Body: payload})
}

// ServerMessages retrieves the server messages queued for the device.
func (c *Client) ServerMessages(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID+"/server-messages", nil)
}

// Device retrieves the device configuration.
func (c *Client) Device(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID, nil)
}

// LatestStatus retrieves the latest available device status.
func (c *Client) LatestStatus(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID+"/status/latest", nil)
}

// StatusHistory retrieves a time series of device statuses between fromTs
// and toTs. At least one bound must be given; nil leaves that bound open.
func (c *Client) StatusHistory(ctx context.Context, deviceID string, fromTs, toTs *int64) (any, error) {
	if err := validateRange(fromTs, toTs); err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, "devices/"+deviceID+"/status",
		&rest.RequestOptions{Query: rangeQuery(fromTs, toTs)})
}

// LatestConfigAuditLog retrieves the latest available config audit log.
func (c *Client) LatestConfigAuditLog(ctx context.Context, deviceID string) (any, error) {
	return c.rest.Get(ctx, "devices/"+deviceID+"/config-logs/latest", nil)
}

// ConfigAuditLogHistory retrieves a time series of config audit logs between
// fromTs and toTs. At least one bound must be given.
func (c *Client) ConfigAuditLogHistory(ctx context.Context, deviceID string, fromTs, toTs *int64) (any, error) {
	if err := validateRange(fromTs, toTs); err != nil {
		return nil, err
	}
	return c.rest.Get(ctx, "devices/"+deviceID+"/config-logs",
		&rest.RequestOptions{Query: rangeQuery(fromTs, toTs)})
}

// DeviceOnlineStateHistory retrieves the comms online-state history for one
// device. Both bounds are optional.
func (c *Client) DeviceOnlineStateHistory(ctx context.Context, deviceID string, fromTs, toTs *int64, exclSource bool) (any, error) {
	query := rangeQuery(fromTs, toTs)
	query.Set("exclSource", strconv.FormatBool(exclSource))
	return c.rest.Get(ctx, "devices/"+deviceID+"/comms/online-state",
		&rest.RequestOptions{Query: query})
}

// FleetOnlineStateHistory retrieves the comms online-state history across
// devices. A nil device list queries the whole fleet.
func (c *Client) FleetOnlineStateHistory(ctx context.Context, devices []string, fromTs, toTs *int64, exclSource bool) (any, error) {
	query := rangeQuery(fromTs, toTs)
	query.Set("exclSource", strconv.FormatBool(exclSource))
	if devices != nil {
		query.Set("devices", strings.Join(devices, ","))
	}
	return c.rest.Get(ctx, "devices/comms/online-state",
		&rest.RequestOptions{Query: query})
}

// validateRange enforces the history-query contract: at least one bound, and
// a closed range must not be inverted.
func validateRange(fromTs, toTs *int64) error {
	if fromTs == nil && toTs == nil {
		return rest.NewCallerError("at least one of fromTs and toTs must be given")
	}
	if fromTs != nil && toTs != nil && *fromTs > *toTs {
		return rest.NewCallerError("fromTs %d is after toTs %d", *fromTs, *toTs)
	}
	return nil
}

func rangeQuery(fromTs, toTs *int64) url.Values {
	query := url.Values{}
	if fromTs != nil {
		query.Set("fromTs", strconv.FormatInt(*fromTs, 10))
	}
	if toTs != nil {
		query.Set("toTs", strconv.FormatInt(*toTs, 10))
	}
	return query
}
