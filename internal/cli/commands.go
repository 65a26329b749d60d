package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ddddddO/gtree"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jsonforms/pkg/fill"
	"github.com/goliatone/go-jsonforms/pkg/instance"
	"github.com/goliatone/go-jsonforms/pkg/reference"
	"github.com/goliatone/go-jsonforms/pkg/render"
	"github.com/goliatone/go-jsonforms/pkg/renderers/basic"
	"github.com/goliatone/go-jsonforms/pkg/schema"
	"github.com/goliatone/go-jsonforms/pkg/uischema"
)

func (a *app) newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print the UI schema generated from the data schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataSchema, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			refs := reference.NewResolver()
			ui, err := uischema.NewGenerator(uischema.WithReferences(refs)).Generate(dataSchema)
			if err != nil {
				return err
			}
			a.logger.Debug("cli: ui schema generated", "controls", len(refs.Mappings()))
			return writeOutput(cmd.OutOrStdout(), a.cfg.Output, ui, uiTree(ui))
		},
	}
}

func (a *app) newRenderCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form description for a data instance",
		Long: `Render the form description for a data instance.

With --watch the description is printed again whenever the data schema, UI
schema or data file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			renderOnce := func() error {
				form, err := a.newForm(ctx)
				if err != nil {
					return err
				}
				raw, err := a.loadData(ctx)
				if err != nil {
					return err
				}
				descriptions, err := form.RenderJSON(raw)
				if err != nil {
					return err
				}
				a.logger.Debug("cli: form rendered", "form_id", form.ID(), "descriptions", len(descriptions))
				return writeOutput(cmd.OutOrStdout(), a.cfg.Output, descriptions, descriptionTree(a.cfg.Schema, descriptions))
			}

			if err := renderOnce(); err != nil {
				if !watch {
					return err
				}
				a.logger.Error("cli: render failed", "error", err)
			}
			if !watch {
				return nil
			}
			return watchFiles(ctx, a.localPaths(), a.logger, renderOnce)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when input files change")
	return cmd
}

func (a *app) newResolveCommand() *cobra.Command {
	var schemaNode, uiPath bool
	cmd := &cobra.Command{
		Use:   "resolve <pointer>",
		Short: "Print the value (or subschema) addressed by a schema pointer",
		Example: `  jsonforms resolve '#/properties/address/properties/city' --data person.json
  jsonforms resolve '#/properties/tags/items' --schema person.schema.json --schema-node
  jsonforms resolve '#/elements/1' --schema person.schema.json --data person.json --ui-path`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if schemaNode && uiPath {
				return errors.New("cli: --schema-node and --ui-path are mutually exclusive")
			}
			if uiPath {
				return a.resolveUIPath(cmd, args[0])
			}
			if schemaNode {
				dataSchema, err := a.loadSchema(ctx)
				if err != nil {
					return err
				}
				sub, err := reference.ResolveSchema(dataSchema, args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), a.cfg.Output, sub, nil)
			}

			raw, err := a.loadData(ctx)
			if err != nil {
				return err
			}
			if raw == nil {
				return errors.New("cli: --data is required")
			}
			value, err := instance.Get(raw, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), a.cfg.Output, value, nil)
		},
	}
	cmd.Flags().BoolVar(&schemaNode, "schema-node", false, "resolve against the data schema instead of the data")
	cmd.Flags().BoolVar(&uiPath, "ui-path", false, "treat the argument as a UI schema path (#/elements/<i>/...) of the form")
	return cmd
}

func (a *app) resolveUIPath(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	form, err := a.newForm(ctx)
	if err != nil {
		return err
	}
	raw, err := a.loadData(ctx)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.New("cli: --data is required")
	}
	data, err := instance.Get(raw, "#")
	if err != nil {
		return err
	}
	value, err := form.Resolve(data, path)
	if err != nil {
		return err
	}
	a.logger.Debug("cli: ui path resolved", "ui_path", path, "pointer", form.References().SchemaPointerFor(path))
	return writeOutput(cmd.OutOrStdout(), a.cfg.Output, value, nil)
}

func (a *app) newFillCommand() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Prompt for every control and print the updated data instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := a.newForm(ctx)
			if err != nil {
				return err
			}
			raw, err := a.loadData(ctx)
			if err != nil {
				return err
			}
			if raw == nil {
				raw = []byte(`{}`)
			}
			descriptions, err := form.RenderJSON(raw)
			if err != nil {
				return err
			}

			opts := []fill.Option{fill.WithLogger(a.logger)}
			if a.driver != nil {
				opts = append(opts, fill.WithPromptDriver(a.driver))
			}
			updated, err := fill.New(opts...).Fill(ctx, descriptions, raw)
			if err != nil {
				return err
			}

			if !write {
				value, err := schema.DecodeOrdered(updated)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), a.cfg.Output, value, nil)
			}
			return a.writeData(updated)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the result back to the --data file")
	return cmd
}

func (a *app) writeData(raw []byte) error {
	path := strings.TrimSpace(a.cfg.Data)
	if path == "" || isURL(path) {
		return errors.New("cli: --write needs a local --data file")
	}
	var out []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		converted, err := schema.JSONToYAML(raw)
		if err != nil {
			return err
		}
		out = converted
	default:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("cli: format data: %w", err)
		}
		buf.WriteByte('\n')
		out = buf.Bytes()
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("cli: write data: %w", err)
	}
	a.logger.Info("cli: data written", "path", path)
	return nil
}

func (a *app) newRenderersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renderers",
		Short: "List the built-in renderers in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := render.NewService()
			basic.Register(svc, render.NewFactory(nil))
			names := svc.Renderers()
			return writeOutput(cmd.OutOrStdout(), a.cfg.Output, names, func() *gtree.Node {
				root := gtree.NewRoot("renderers")
				for _, name := range names {
					root.Add(name)
				}
				return root
			})
		},
	}
}

func (a *app) newOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the request body operations of an OpenAPI document",
		Long: `List the request body operations of an OpenAPI document given as --schema.

Any listed id can be passed to --operation to render that request body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := a.parseSource(a.cfg.Schema)
			if src == nil {
				return errors.New("cli: --schema is required")
			}
			spec, err := a.loadOpenAPI(cmd.Context(), src)
			if err != nil {
				return err
			}
			ops := spec.Operations()
			return writeOutput(cmd.OutOrStdout(), a.cfg.Output, ops, func() *gtree.Node {
				root := gtree.NewRoot(a.cfg.Schema)
				for _, op := range ops {
					node := root.Add(fmt.Sprintf("%s %s %s", op.ID, op.Method, op.Path))
					if op.SchemaRef != "" {
						node.Add(op.SchemaRef)
					}
				}
				return root
			})
		},
	}
}
