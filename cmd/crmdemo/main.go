// Command crmdemo runs one of the Letter-World scenarios end to end
// against the cross-product environment and prints the resulting
// (state, counters, reward) trajectory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/smilemakc/crm/internal/config"
	"github.com/smilemakc/crm/internal/crossproduct"
	"github.com/smilemakc/crm/pkg/letterworld"
)

func main() {
	cfg := config.Load()

	scenario := flag.String("scenario", cfg.Scenario, "scenario to run: s1, s2, s3, s4")
	maxSteps := flag.Int("max-steps", cfg.MaxSteps, "episode step limit before truncation")
	logLevel := flag.String("log-level", cfg.LogLevel, "zerolog level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()

	crm, err := letterworld.BuildCRM()
	if err != nil {
		log.Fatal().Err(err).Msg("crmdemo: failed to build CRM")
	}
	lf, err := letterworld.BuildLabel(crm)
	if err != nil {
		log.Fatal().Err(err).Msg("crmdemo: failed to build labelling function")
	}

	env := crossproduct.New(letterworld.NewEnv(), lf, crm, letterworld.Encoder{}, *maxSteps,
		crossproduct.WithLogger(log), crossproduct.WithTrace(64))

	actions, err := actionsFor(*scenario)
	if err != nil {
		log.Fatal().Err(err).Msg("crmdemo: unknown scenario")
	}

	ctx := context.Background()
	if _, _, err := env.Reset(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("crmdemo: reset failed")
	}

	for i, action := range actions {
		aug, reward, terminated, truncated, _, err := env.Step(ctx, action)
		if err != nil {
			log.Fatal().Err(err).Int("step", i).Msg("crmdemo: step failed")
		}
		observed := aug.(letterworld.Augmented)
		fmt.Printf("step %2d  action=%-2s  state=%-2d  counters=%v  reward=%+.2f  terminated=%v  truncated=%v\n",
			i, action, observed.State, observed.Counters, reward, terminated, truncated)
		if terminated || truncated {
			break
		}
	}
}

func actionsFor(scenario string) ([]letterworld.Action, error) {
	switch scenario {
	case "s1":
		return []letterworld.Action{
			letterworld.ActionOther, letterworld.ActionA, letterworld.ActionA,
			letterworld.ActionB, letterworld.ActionC, letterworld.ActionC,
		}, nil
	case "s2":
		return []letterworld.Action{letterworld.ActionB, letterworld.ActionC}, nil
	case "s3":
		return []letterworld.Action{
			letterworld.ActionA, letterworld.ActionB, letterworld.ActionC, letterworld.ActionC,
		}, nil
	case "s4":
		actions := make([]letterworld.Action, 200)
		for i := range actions {
			actions[i] = letterworld.ActionOther
		}
		return actions, nil
	default:
		return nil, fmt.Errorf("scenario %q is not one of s1, s2, s3, s4", scenario)
	}
}
