package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/basket/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	for _, cmds := range Commands() {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: predictFlags(fs)}
			if c.Name() == "topic" {
				if topics, err := docs.Topics(); err == nil {
					sub.Args = predict.Set(topics)
				}
			}
			root.Sub[c.Name()] = sub
		}
	}
	return root
}

// predictFlags predicts the values of every flag of fs.
func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case f.Name == "config":
			flags[f.Name] = predict.Files("*.yaml")
		case strings.HasSuffix(f.DefValue, ".jsonl"):
			flags[f.Name] = predict.Files("*.jsonl")
		case f.DefValue == "true" || f.DefValue == "false":
			flags[f.Name] = predict.Nothing
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}
