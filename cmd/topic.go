package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/basket/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the embedded documentation.
type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read the bsk documentation" }
func (*topicCmd) Usage() string {
	return `bsk topic [-l] [<topic>...]

  Prints the given topics, the index when none is given, or every topic
  for '*'. With -l, prints only the topic names.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "l", false, "list the topic names")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		names, err := docs.Topics()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Println(strings.Join(names, "\n"))
		return subcommands.ExitSuccess
	}
	names := f.Args()
	if len(names) == 0 {
		names = []string{"readme"}
	}
	md, err := docs.Concat(names...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
