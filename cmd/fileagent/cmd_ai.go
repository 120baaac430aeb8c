package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fileagent/internal/assistant"
	"fileagent/internal/config"
	"fileagent/internal/knowledge"
	"fileagent/internal/weather"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	aiSystem    string
	aiRender    bool
	aiKnowledge string
	aiTopK      int
)

// aiCmd groups the single-turn AI flows
var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Single-turn AI flows: basic, structure, tools, retrieval",
}

var aiBasicCmd = &cobra.Command{
	Use:   "basic [prompt]",
	Short: "Send one prompt and print the reply",
	Long: `Sends a system and a user message and prints the reply with the elapsed time.
Without arguments the model is asked for a short poem about the sea.`,
	RunE: runAIBasic,
}

var aiStructureCmd = &cobra.Command{
	Use:   "structure [text]",
	Short: "Extract a calendar event as a JSON object",
	RunE:  runAIStructure,
}

var aiToolsCmd = &cobra.Command{
	Use:   "tools [question]",
	Short: "Answer a weather question using the get_weather tool",
	RunE:  runAITools,
}

var aiRetrievalCmd = &cobra.Command{
	Use:   "retrieval [question]",
	Short: "Answer a question from the knowledge base using the get_knowledge tool",
	Long: `Answers a question about the store from the knowledge base. The base is a
JSON file (default knowledge.json), a text file or an http(s) URL.`,
	RunE: runAIRetrieval,
}

func init() {
	aiBasicCmd.Flags().StringVar(&aiSystem, "system", "", "System prompt")
	aiBasicCmd.Flags().BoolVar(&aiRender, "render", false, "Render the reply as markdown")
	aiRetrievalCmd.Flags().StringVar(&aiKnowledge, "knowledge", "", "Knowledge base source (default from config)")
	aiRetrievalCmd.Flags().IntVar(&aiTopK, "top-k", -1, "Send only the k best matching entries (0 sends the whole base)")

	aiCmd.AddCommand(aiBasicCmd)
	aiCmd.AddCommand(aiStructureCmd)
	aiCmd.AddCommand(aiToolsCmd)
	aiCmd.AddCommand(aiRetrievalCmd)
}

func newAssistant(opts ...assistant.Option) (*assistant.Assistant, error) {
	client, err := newLLMClient()
	if err != nil {
		return nil, err
	}
	return assistant.New(client, opts...)
}

func providerName() string {
	if cfg.LLM.Provider == config.ProviderOpenAI {
		return "OpenAI"
	}
	return "Groq"
}

func printSending(w io.Writer) {
	fmt.Fprintf(w, "Sending request to %s API...\n", providerName())
}

func printCompleted(w io.Writer, elapsed time.Duration) {
	fmt.Fprintf(w, "Request completed in %.2f seconds.\n\n", elapsed.Seconds())
}

func runAIBasic(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	a, err := newAssistant()
	if err != nil {
		return err
	}

	printSending(out)
	ans, err := a.Basic(ctx, aiSystem, joinArgs(args))
	if err != nil {
		return err
	}
	printCompleted(out, ans.Elapsed)

	content := ans.Content
	if aiRender {
		content = renderMarkdown(content)
	}
	fmt.Fprintln(out, content)
	return nil
}

// renderMarkdown renders s for the terminal, falling back to s unchanged.
func renderMarkdown(s string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return s
	}
	rendered, err := renderer.Render(s)
	if err != nil {
		return s
	}
	return strings.TrimRight(rendered, "\n")
}

func runAIStructure(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	a, err := newAssistant()
	if err != nil {
		return err
	}

	printSending(out)
	ev, err := a.ExtractCalendarEvent(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	printCompleted(out, ev.Elapsed)

	fmt.Fprintln(out, ev.Name)
	fmt.Fprintln(out, ev.Date)
	fmt.Fprintln(out, pyList(ev.Participants))
	return nil
}

func runAITools(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	wx := weather.NewClient(cfg.Weather.BaseURL, &http.Client{Timeout: cfg.GetWeatherTimeout()})
	a, err := newAssistant(assistant.WithWeather(wx))
	if err != nil {
		return err
	}

	printSending(out)
	ans, err := a.Weather(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	printCompleted(out, ans.Exchange.Elapsed)

	fmt.Fprintln(out, weather.FormatTemp(ans.Temperature))
	fmt.Fprintln(out, ans.Response)
	return nil
}

func runAIRetrieval(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	source := cfg.Knowledge.Source
	if aiKnowledge != "" {
		source = aiKnowledge
	}
	topK := cfg.Knowledge.TopK
	if aiTopK >= 0 {
		topK = aiTopK
	}
	base, err := knowledge.Load(ctx, source, knowledge.WithTopK(topK))
	if err != nil {
		return err
	}

	a, err := newAssistant(assistant.WithKnowledge(base))
	if err != nil {
		return err
	}

	printSending(out)
	ans, err := a.Retrieve(ctx, joinArgs(args))
	if err != nil {
		return err
	}
	printCompleted(out, ans.Exchange.Elapsed)

	fmt.Fprintln(out, ans.Answer)
	fmt.Fprintln(out, ans.Source)
	return nil
}

// pyList prints names the way Python prints a list of strings.
func pyList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
