package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	vuerrors "github.com/vango-dev/vuey/internal/errors"
	"github.com/vango-dev/vuey/pkg/persist"
	"github.com/vango-dev/vuey/pkg/store"
)

// exactArgs is cobra.ExactArgs with a coded error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return vuerrors.New("V060").
				WithDetail(fmt.Sprintf("%s takes %d argument(s), got %d", cmd.Name(), n, len(args))).
				WithSuggestion("Usage: " + cmd.UseLine())
		}
		return nil
	}
}

// withBackend opens the selected backend for the duration of fn.
func withBackend(flags *globalFlags, fn func(section string, b persist.Backend) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	section, bc := backendConfig(cfg, flags)
	backend, closer, err := openBackend(cfg, section, bc)
	if err != nil {
		return err
	}
	defer closer()
	return fn(section, backend)
}

func lsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stores with a persisted record",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(flags, func(section string, b persist.Backend) error {
				names, err := listNames(section, b)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func getCmd(flags *globalFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the persisted record of a store",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(flags, func(section string, b persist.Backend) error {
				value, ok, err := b.Get(store.RecordKey(args[0]))
				if err != nil {
					return vuerrors.FromError(err, "V020")
				}
				if !ok {
					return vuerrors.New("V008").
						WithDetail(fmt.Sprintf("No %s record for store %s", section, strconv.Quote(args[0])))
				}
				if !raw {
					value = indent(value)
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the record exactly as stored")

	return cmd
}

func setCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Overwrite the persisted record of a store",
		Long: `Overwrite the persisted record of a store with a JSON value.

The store picks the record up the next time it is registered.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value := args[0], args[1]
			if !json.Valid([]byte(value)) {
				return vuerrors.New("V009").
					WithDetail("Value for " + strconv.Quote(name) + " is not valid JSON").
					WithSuggestion(`Quote strings as JSON, e.g. '"text"'`)
			}
			return withBackend(flags, func(section string, b persist.Backend) error {
				if err := b.Set(store.RecordKey(name), compact(value)); err != nil {
					return vuerrors.FromError(err, "V020")
				}
				success("Wrote %s record for %s", section, name)
				return nil
			})
		},
	}
}

func rmCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete the persisted record of a store",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(flags, func(section string, b persist.Backend) error {
				d, ok := b.(persist.Deleter)
				if !ok {
					return vuerrors.New("V022").WithDetail("The " + section + " backend cannot delete records")
				}
				if err := d.Delete(store.RecordKey(args[0])); err != nil {
					return vuerrors.FromError(err, "V020")
				}
				success("Removed %s record for %s", section, args[0])
				return nil
			})
		},
	}
}

// listNames returns the store names that have a record in b, sorted.
func listNames(section string, b persist.Backend) ([]string, error) {
	l, ok := b.(persist.Lister)
	if !ok {
		return nil, vuerrors.New("V022").WithDetail("The " + section + " backend cannot list records")
	}
	keys, err := l.Keys(store.KeyPrefix)
	if err != nil {
		return nil, vuerrors.FromError(err, "V020")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, store.KeyPrefix))
	}
	return names, nil
}

// indent pretty-prints JSON records and leaves anything else alone.
func indent(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

func compact(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
