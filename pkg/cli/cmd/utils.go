package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// filterFlags are the FIELD=VALUE filter flags shared by ps and watch.
type filterFlags struct {
	eq         []string
	diff       []string
	contains   []string
	noContains []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.eq, "eq", nil, "keep processes whose FIELD equals VALUE (FIELD=VALUE, repeatable)")
	cmd.Flags().StringArrayVar(&f.diff, "diff", nil, "drop processes whose FIELD equals VALUE")
	cmd.Flags().StringArrayVar(&f.contains, "contains", nil, "keep processes whose FIELD contains VALUE")
	cmd.Flags().StringArrayVar(&f.noContains, "no-contains", nil, "drop processes whose FIELD contains VALUE")
}

// spec builds the filter. Repeating a field within one flag ORs its
// values; everything else is ANDed.
func (f *filterFlags) spec() (*types.FilterSpec, error) {
	filter := types.NewFilter()
	groups := []struct {
		values []string
		add    func(types.Field, ...interface{}) *types.FilterSpec
	}{
		{f.eq, filter.WithEq},
		{f.diff, filter.WithDiff},
		{f.contains, filter.WithContains},
		{f.noContains, filter.WithNoContains},
	}

	for _, g := range groups {
		for _, kv := range g.values {
			field, value, err := parseFieldValue(kv)
			if err != nil {
				return nil, err
			}
			g.add(field, value)
		}
	}
	return filter, nil
}

func parseFieldValue(kv string) (types.Field, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok {
		return "", "", types.NewValidationError(fmt.Sprintf("filter %q must be FIELD=VALUE", kv))
	}
	field, err := types.ParseField(strings.TrimSpace(name))
	if err != nil {
		return "", "", err
	}
	return field, value, nil
}

// writeStructured writes v as json or yaml.
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal to YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return types.NewValidationError(fmt.Sprintf("unsupported output format: %s", format))
	}
}
