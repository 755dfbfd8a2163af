package market

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

const defaultRequestTimeout = 10 * time.Second

// Gateway produces one raw market snapshot per call.
type Gateway interface {
	Fetch(ctx context.Context) (*Data, error)
}

// BitqueryGateway implements Gateway against the Bitquery endpoint.
type BitqueryGateway struct {
	client  *Client
	timeout time.Duration
}

// GatewayOption customises the Bitquery gateway.
type GatewayOption func(*BitqueryGateway)

// WithClient injects a custom Bitquery client.
func WithClient(client *Client) GatewayOption {
	return func(g *BitqueryGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(timeout time.Duration) GatewayOption {
	return func(g *BitqueryGateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// NewBitqueryGateway constructs a default gateway.
func NewBitqueryGateway(opts ...GatewayOption) *BitqueryGateway {
	g := &BitqueryGateway{
		client:  NewClient(),
		timeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fetch gathers trade, liquidity and pool price data. Each stream degrades
// independently: a failed fetch logs and leaves its field empty, and Fetch
// errors only when every stream failed.
func (g *BitqueryGateway) Fetch(ctx context.Context) (*Data, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data := &Data{}
	var failures int

	trade, err := g.client.FetchTradeData(ctx)
	if err != nil {
		logx.Infof("market: trade data unavailable: %v", err)
		failures++
	} else {
		data.TradeData = trade
	}

	events, err := g.client.FetchLiquidityEvents(ctx)
	if err != nil {
		logx.Infof("market: liquidity events unavailable: %v", err)
		failures++
	} else {
		data.LiquidityEvents = events
	}

	slippage, err := g.client.FetchSlippageData(ctx)
	if err != nil {
		logx.Infof("market: pool prices unavailable: %v", err)
		failures++
	} else {
		data.SlippageData = slippage
	}

	if failures == 3 {
		return nil, fmt.Errorf("market: all data streams failed")
	}
	return data, nil
}
