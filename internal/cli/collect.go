package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tychoish/flow"
	"github.com/tychoish/flow/erc"
	"github.com/tychoish/flow/ers"
)

// ErrLimitExceeded is the fold failure of a run with --limit when the
// input has more elements than the limit.
const ErrLimitExceeded ers.Error = ers.Error("element limit exceeded")

// CollectOptions holds flags for the collect command.
type CollectOptions struct {
	Input string
	Join  string
	Limit int
}

// NewCollectCommand creates the collect command.
func NewCollectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CollectOptions{}

	cmd := &cobra.Command{
		Use:   "collect [values...]",
		Short: "Collect elements into a list or a joined string",
		Long: `Collect elements into one value.

Elements are the positional arguments, or the YAML or JSON sequence
read from --input ("-" reads stdin). Without --join the elements are
collected into a list; with --join they are rendered and joined into
one string.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sep, join := opts.Join, cmd.Flags().Changed("join")
			if conf := rootOpts.Config; !join && conf != nil && conf.SeparatorSet {
				sep, join = conf.Separator, true
			}
			return runCollect(cmd, rootOpts, opts, args, sep, join)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", `YAML or JSON sequence to read elements from ("-" for stdin)`)
	cmd.Flags().StringVarP(&opts.Join, "join", "j", "", "join elements into a string with this separator")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "fail when there are more elements than this (0 for no limit)")

	return cmd
}

func runCollect(cmd *cobra.Command, rootOpts *RootOptions, opts *CollectOptions, args []string, sep string, join bool) error {
	logger := rootOpts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Input != "" && len(args) > 0 {
		return NewExitError(ExitCommandError, "values and --input are mutually exclusive")
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d", opts.Limit))
	}

	elems, err := readElements(cmd.InOrStdin(), opts.Input, args)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading input", err)
	}
	logger.Debug("collecting", slog.Int("elements", len(elems)), slog.Bool("join", join))

	undelivered := &erc.Collector{}
	flow.SetLogger(logger)
	flow.SetErrorHandler(undelivered.Handler().Join(func(err error) {
		logger.Debug("undeliverable error reported", slog.Any("err", err))
	}))
	defer flow.SetLogger(nil)
	defer flow.ResetErrorHandler()
	defer func() {
		for _, uerr := range undelivered.Errors() {
			logger.Warn("undeliverable error", slog.Any("err", uerr))
		}
	}()

	value, err := collect(cmd.Context(), flow.Slice(elems), sep, join, opts.Limit)
	if err != nil {
		logger.Debug("collect failed", slog.Any("err", err))
		return WrapExitError(ExitFailure, "collect failed", err)
	}

	return Render(cmd.OutOrStdout(), rootOpts.Format, Result{
		Run:   rootOpts.RunID,
		Count: len(elems),
		Value: value,
	})
}

// collect folds the elements into a list, or into a string when join
// is set, enforcing the limit in the fold.
func collect(ctx context.Context, src flow.Publisher[any], sep string, join bool, limit int) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	seen := 0
	check := func() error {
		seen++
		if limit > 0 && seen > limit {
			return fmt.Errorf("%d > %d: %w", seen, limit, ErrLimitExceeded)
		}
		return nil
	}

	if join {
		out, err := flow.BlockingLast(ctx, flow.Collect(src,
			func() (*flow.Joiner, error) { seen = 0; return flow.NewJoiner(sep), nil },
			func(j *flow.Joiner, item any) error {
				if err := check(); err != nil {
					return err
				}
				return j.Add(item)
			},
		))
		if err != nil {
			return nil, err
		}
		return out.String(), nil
	}

	out, err := flow.BlockingLast(ctx, flow.Collect(src,
		func() (*[]any, error) { seen = 0; list := []any{}; return &list, nil },
		func(list *[]any, item any) error {
			if err := check(); err != nil {
				return err
			}
			*list = append(*list, item)
			return nil
		},
	))
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// readElements returns the positional values, or decodes a sequence
// from the input file. YAML is a superset of JSON, so one decoder
// handles both. An empty document has no elements.
func readElements(stdin io.Reader, input string, args []string) ([]any, error) {
	if input == "" {
		out := make([]any, len(args))
		for idx := range args {
			out[idx] = args[idx]
		}
		return out, nil
	}

	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, err
	}

	var out []any
	if err := yaml.Unmarshal(data, &out); err != nil {
		var terr *yaml.TypeError
		if errors.As(err, &terr) {
			return nil, fmt.Errorf("%s is not a sequence: %w", inputName(input), ers.ErrInvalidInput)
		}
		return nil, ers.Wrapf(err, "decoding %s", inputName(input))
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func inputName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}
