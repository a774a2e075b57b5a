package cmd

import (
	"time"

	"github.com/Semior001/headlines/app/gnews"
	"github.com/Semior001/headlines/app/sampler"
	"golang.org/x/exp/slog"
)

// GNewsGroup defines options of the headline source.
type GNewsGroup struct {
	APIKey     string        `long:"api-key" env:"API_KEY" description:"GNews API key"`
	Endpoint   string        `long:"endpoint" env:"ENDPOINT" default:"https://gnews.io/api/v4/top-headlines" description:"top headlines endpoint"`
	Category   string        `long:"category" env:"CATEGORY" default:"general" description:"category of headlines"`
	Lang       string        `long:"lang" env:"LANG" default:"en" description:"language of headlines"`
	Country    string        `long:"country" env:"COUNTRY" default:"us" description:"country of headlines"`
	Max        int           `long:"max" env:"MAX" default:"10" description:"max number of headlines to list"`
	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" default:"0s" description:"timeout for listing headlines, 0 means no timeout"`
	SampleSize int           `long:"sample-size" env:"SAMPLE_SIZE" default:"3" description:"number of headlines to draw"`
}

func (g GNewsGroup) query() gnews.Query {
	return gnews.Query{
		Category: g.Category,
		Lang:     g.Lang,
		Country:  g.Country,
		Max:      g.Max,
	}
}

// apiKey is read on every refresh, so that an empty key is reported
// to the user instead of failing the start.
func (g GNewsGroup) apiKey() string { return g.APIKey }

// newSampler makes a sampler over the shared client.
func (g GNewsGroup) newSampler(lg *slog.Logger, cl *gnews.Client, opts ...sampler.Option) *sampler.Sampler {
	opts = append([]sampler.Option{
		sampler.WithLogger(lg),
		sampler.WithQuery(g.query()),
		sampler.WithSize(g.SampleSize),
	}, opts...)

	return sampler.New(cl, g.apiKey, opts...)
}
