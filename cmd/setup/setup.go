// Package setup contains common wiring/setup code used by all services
package setup

import (
	"context"
	"fmt"
	"math/rand"
	"time"
	_ "time/tzdata" // include embedded timezone data

	"github.com/circleci/ex/config/o11y"
	"github.com/circleci/ex/config/secret"
	"github.com/circleci/ex/rootcerts"
)

type CLI struct {
	AdminAddr string `env:"ADMIN_ADDR" default:":3001" help:"The address for the admin api to listen on"`
	Debug     bool   `env:"DEBUG" help:"Enable verbose development output"`

	O11yStatsd           string        `name:"o11y-statsd" env:"O11Y_STATSD" default:"localhost:8125" help:"Address to send statsd metrics"`
	O11yHoneycombEnabled bool          `name:"o11y-honeycomb" env:"O11Y_HONEYCOMB" default:"false" help:"Send traces to honeycomb"`
	O11yHoneycombDataset string        `name:"o11y-honeycomb-dataset" env:"O11Y_HONEYCOMB_DATASET" default:"news"`
	O11yHoneycombKey     secret.String `name:"o11y-honeycomb-key" env:"O11Y_HONEYCOMB_KEY"`
	O11yFormat           string        `name:"o11y-format" env:"O11Y_FORMAT" enum:"json,color,text" default:"json" help:"Format used for stderr logging"`
	O11yRollbarToken     secret.String `name:"o11y-rollbar-token" env:"O11Y_ROLLBAR_TOKEN"`
	O11yRollbarEnv       string        `name:"o11y-rollbar-env" env:"O11Y_ROLLBAR_ENV" default:"production"`

	// The database settings (DB_HOST, DB_NAME, DB_USER, DB_PASS) are not
	// parsed here: the news store reads them from the environment on every
	// connection acquisition.
}

func init() {
	rand.Seed(time.Now().Unix())
	err := rootcerts.UpdateDefaultTransport()
	if err != nil {
		panic(fmt.Errorf("failed to inject rootcerts: %w", err))
	}
}

func LoadO11y(version, mode string, cli CLI) (context.Context, func(context.Context), error) {
	format := cli.O11yFormat
	if cli.Debug {
		format = "color"
	}
	cfg := o11y.Config{
		Statsd:            cli.O11yStatsd,
		RollbarToken:      cli.O11yRollbarToken,
		RollbarEnv:        cli.O11yRollbarEnv,
		RollbarServerRoot: "newsapi",
		HoneycombEnabled:  cli.O11yHoneycombEnabled,
		HoneycombDataset:  cli.O11yHoneycombDataset,
		HoneycombKey:      cli.O11yHoneycombKey,
		Format:            format,
		Version:           version,
		Service:           "news-api",
		StatsNamespace:    "newsapi.",
		Mode:              mode,
	}
	return o11y.Setup(context.Background(), cfg)
}
