package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"mdxpad/internal/config"
	"mdxpad/internal/database"
	"mdxpad/internal/editor"
	"mdxpad/internal/generation"
	"mdxpad/internal/llm"
	"mdxpad/internal/services"
	"mdxpad/internal/utils"
)

type generateOptions struct {
	rangeSpec  string
	prompt     string
	template   string
	provider   string
	model      string
	apiKey     string
	output     string
	full       bool
	saveKey    bool
	noHistory  bool
	showStream bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <file|->",
		Short: "Stream an AI rewrite into a document",
		Long: `Stream an AI rewrite into a document and print the result.

With --range only that span is replaced; otherwise the whole document is.
Ctrl-C stops the generation and keeps what was written so far.

The API key is taken from --api-key, then MDXPAD_API_KEY, then the keyring.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return o.run(ctx, cmd, root, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.rangeSpec, "range", "r", "", "range to replace, as startLine:startCol-endLine:endCol")
	f.StringVarP(&o.prompt, "prompt", "p", "", "instruction for the model")
	f.StringVarP(&o.template, "template", "t", "", "name of a stored prompt template")
	f.StringVar(&o.provider, "provider", "", "gemini or openrouter (default from config)")
	f.StringVarP(&o.model, "model", "m", "", "model name (default from config or catalog)")
	f.StringVar(&o.apiKey, "api-key", "", "provider API key")
	f.StringVarP(&o.output, "output", "o", "", "write the result to a file instead of stdout")
	f.BoolVar(&o.full, "full", false, "request one complete response instead of a stream")
	f.BoolVar(&o.saveKey, "save-key", false, "store the API key in the keyring after the request starts")
	f.BoolVar(&o.noHistory, "no-history", false, "do not record this run in the history database")
	f.BoolVar(&o.showStream, "show-stream", false, "echo streamed text to stderr")
	return cmd
}

func (o *generateOptions) run(ctx context.Context, cmd *cobra.Command, root *rootOptions, path string) error {
	cfg := root.cfg
	errOut := cmd.ErrOrStderr()

	content, err := readDocument(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	provider := o.provider
	if provider == "" {
		provider = cfg.DefaultProvider
	}
	kind, err := llm.ParseProviderKind(provider)
	if err != nil {
		return err
	}

	var dbs *services.DbServices
	if !o.noHistory || o.template != "" {
		svc, db, err := root.openServices(cmd)
		if err != nil {
			dim(errOut, "  history disabled: %v\n", err)
		} else {
			dbs = svc
			defer database.Close(db)
		}
	}

	prompt := o.prompt
	if o.template != "" {
		if dbs == nil {
			return fmt.Errorf("template %q: database unavailable", o.template)
		}
		rendered, err := renderTemplate(dbs.Templates, o.template, prompt)
		if err != nil {
			return err
		}
		prompt = rendered
	}

	key, err := o.resolveKey(root)
	if err != nil {
		return err
	}

	buf := editor.NewBuffer(content)
	var snap editor.SelectionSnapshot
	if o.rangeSpec != "" {
		r, err := editor.ParseRange(o.rangeSpec)
		if err != nil {
			return err
		}
		if err := editor.ValidateRange(buf, r); err != nil {
			return err
		}
		snap = editor.SelectionSnapshot{Range: &r, Text: buf.GetValueInRange(r)}
	}

	req, err := llm.NewGenerationRequest(kind, o.modelFor(cfg, kind, dbs), key, generation.BuildPrompt(prompt, snap))
	if err != nil {
		return err
	}

	sp := NewSpinner(errOut, fmt.Sprintf("Asking %s (%s)...", kind.DisplayName(), req.Model))
	observer := generation.ObserverFuncs{
		OnState: func(_ string, s generation.State) {
			if s == generation.StateStreaming {
				sp.Update("Streaming...")
			}
		},
		OnChunk: func(_ string, chunk, output string) {
			if o.showStream {
				fmt.Fprint(errOut, chunk)
			} else {
				sp.Update(fmt.Sprintf("Streaming... %d chars", len(output)))
			}
		},
	}
	ctrl := generation.NewController(buf, services.ProviderResolver(cfg),
		generation.WithObserver(observer),
		generation.WithLogger(config.DebugLog),
	)

	var startOpts []generation.StartOption
	if o.full {
		startOpts = append(startOpts, generation.WithFullResponse())
	}
	if !o.showStream {
		sp.Start()
	}
	sess, err := ctrl.Start(ctx, req, snap, startOpts...)
	if err != nil {
		sp.Fail("Request rejected")
		return err
	}
	if o.saveKey {
		if err := root.keyring().StoreApiKey(key); err != nil {
			dim(errOut, "  could not store key: %v\n", err)
		}
	}
	if dbs != nil {
		if err := dbs.History.Begin(sess); err != nil {
			dim(errOut, "  %v\n", err)
		}
	}

	res := sess.Wait()
	if dbs != nil {
		if err := dbs.History.Finish(res); err != nil {
			dim(errOut, "  %v\n", err)
		}
	}
	if o.showStream {
		fmt.Fprintln(errOut)
	}

	switch res.State {
	case generation.StateCompleted:
		sp.Success(fmt.Sprintf("Generated %d chars via %s", len(res.Output), res.Strategy))
	case generation.StateCancelled:
		sp.Warn(fmt.Sprintf("Stopped after %d chars", len(res.Output)))
	default:
		sp.Fail("Generation failed")
	}

	if werr := o.writeResult(cmd.OutOrStdout(), res.Document); werr != nil {
		return werr
	}
	if res.State == generation.StateFailed {
		return res.Err
	}
	return nil
}

func (o *generateOptions) resolveKey(root *rootOptions) (string, error) {
	if k := strings.TrimSpace(o.apiKey); k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(os.Getenv("MDXPAD_API_KEY")); k != "" {
		return k, nil
	}
	k, err := root.keyring().GetApiKey()
	if err != nil {
		return "", err
	}
	if k == "" {
		return "", errors.New("no API key: pass --api-key, set MDXPAD_API_KEY or run `mdxpad key set`")
	}
	return k, nil
}

func (o *generateOptions) modelFor(cfg *config.Config, kind llm.ProviderKind, dbs *services.DbServices) string {
	if m := strings.TrimSpace(o.model); m != "" {
		return m
	}
	if cfg.DefaultModel != "" && cfg.DefaultProvider == string(kind) {
		return cfg.DefaultModel
	}
	if dbs != nil {
		if def, err := dbs.ModelConfigs.DefaultModel(string(kind)); err == nil {
			return def.APIName
		}
	}
	return kind.DefaultModel()
}

func (o *generateOptions) writeResult(stdout io.Writer, doc string) error {
	if o.output == "" {
		_, err := io.WriteString(stdout, doc)
		return err
	}
	if err := utils.WriteTextFile(o.output, doc); err != nil {
		return fmt.Errorf("write %s: %w", o.output, err)
	}
	return nil
}

func readDocument(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	}
	content, err := utils.ReadTextFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

func renderTemplate(templates services.TemplateService, name, instruction string) (string, error) {
	list, err := templates.ListTemplates()
	if err != nil {
		return "", err
	}
	for _, t := range list {
		if t.Name == name {
			return templates.Render(t.ID, instruction)
		}
	}
	return "", fmt.Errorf("template %q not found", name)
}
