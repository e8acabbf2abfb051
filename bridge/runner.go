package bridge

import (
	"context"

	"github.com/jessevdk/go-flags"
)

// Version is the satgate release
const Version = "0.1.0"

// Run parses args, builds the bridge and serves the selected transport
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	if err := options.Load(ctx); err != nil {
		return err
	}
	aBridge, err := New(ctx, options)
	if err != nil {
		return err
	}
	defer aBridge.Close()
	return aBridge.Serve(ctx)
}
