// Package main provides the EduMentor CLI application entry point.
// EduMentor is an adaptive AI tutoring engine: learner input flows through
// sanitization, admission control, prompt composition, and generation, and
// every reply is analyzed for adaptive-teaching signals.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"edumentor/internal/config"
	"edumentor/internal/gateway"
	"edumentor/internal/logger"
	"edumentor/internal/prompt"
	"edumentor/internal/tutor"
	"edumentor/pkg/tutortypes"
)

var (
	logLevel   string
	logFile    string
	testMode   bool
	configFile string

	moduleFlag     string
	styleFlag      string
	difficultyFlag string
	personaFlag    string
	streamFlag     bool

	version = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edumentor",
	Short: "EduMentor - adaptive AI tutoring engine",
	Long: `EduMentor is an adaptive AI tutoring engine for multi-turn learning dialogues.
It guards learner input, enforces rate and token budgets, composes persona-driven
prompts, and analyzes every generated reply for adaptive-teaching signals.`,
	Run: runChat, // Default behavior is the interactive tutoring session
}

// askCmd runs a single tutoring exchange and exits.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single tutoring question",
	Long:  `Run one tutoring exchange without an interactive session and print the structured response.`,
	Args:  cobra.MinimumNArgs(1),
	Run:   runAsk,
}

// chatCmd represents the chat command (explicit version of default behavior)
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring session",
	Long:  `Start an interactive tutoring session with conversation state tracked across turns.`,
	Run:   runChat,
}

// budgetCmd reports the shared token ledger.
var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the token budget ledger",
	Run:   runBudget,
}

// personasCmd lists the embedded persona catalog.
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available tutoring personas",
	Run:   runPersonas,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("EduMentor v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")

	for _, cmd := range []*cobra.Command{rootCmd, askCmd, chatCmd} {
		cmd.Flags().StringVar(&moduleFlag, "module", "", "Current learning module")
		cmd.Flags().StringVar(&styleFlag, "style", "", "Learning style (visual|auditory|kinesthetic|reading)")
		cmd.Flags().StringVar(&difficultyFlag, "difficulty", "intermediate", "Difficulty level")
		cmd.Flags().StringVar(&personaFlag, "persona", "", "Tutoring persona name")
	}
	askCmd.Flags().BoolVar(&streamFlag, "stream", false, "Stream the response incrementally")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// newService loads configuration and the environment, resolves the provider
// client, and assembles the tutoring pipeline.
func newService() (*tutor.Service, *config.Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	apiKey := apiKeyFor(cfg.Provider)
	if apiKey == "" {
		return nil, nil, fmt.Errorf("no API key found for provider '%s' (set %s)", cfg.Provider, apiKeyEnvVar(cfg.Provider))
	}

	client, err := gateway.NewClientFactory().ClientFor(cfg.Provider, apiKey)
	if err != nil {
		return nil, nil, err
	}

	return tutor.New(cfg, client), cfg, nil
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

func apiKeyFor(provider string) string {
	return os.Getenv(apiKeyEnvVar(provider))
}

func learningContextFromFlags(userID string) *tutortypes.LearningContext {
	return &tutortypes.LearningContext{
		UserID:          userID,
		CurrentModule:   moduleFlag,
		LearningStyle:   tutortypes.LearningStyle(styleFlag),
		DifficultyLevel: difficultyFlag,
	}
}

func personaFromFlags(cfg *config.Config) *tutortypes.AIPersona {
	name := personaFlag
	if name == "" {
		name = cfg.PersonaName
	}
	p := prompt.PersonaByName(name)
	return &p
}

func currentUser() string {
	if user := os.Getenv("EDUMENTOR_USER"); user != "" {
		return user
	}
	return "local"
}

func runAsk(_ *cobra.Command, args []string) {
	svc, cfg, err := newService()
	if err != nil {
		logger.Fatal("Failed to initialize tutoring service", "error", err)
	}
	defer svc.Close()

	question := strings.Join(args, " ")
	lctx := learningContextFromFlags(currentUser())
	persona := personaFromFlags(cfg)

	ctx := context.Background()
	var resp *tutortypes.AIResponse
	if streamFlag {
		resp, err = svc.GenerateStreamingResponse(ctx, question, lctx, nil, persona, printChunk)
		fmt.Println()
	} else {
		resp, err = svc.GenerateResponse(ctx, question, lctx, nil, persona)
	}
	if err != nil {
		logger.Fatal("Tutoring exchange failed", "error", err)
	}

	if !streamFlag {
		fmt.Println(renderMarkdown(resp.Content))
	}
	printSignals(resp)
}

var streamedSoFar int

// printChunk prints each streamed chunk as the delta over the previous
// cumulative content.
func printChunk(chunk tutortypes.StreamChunk) error {
	fmt.Print(chunk.Content[streamedSoFar:])
	streamedSoFar = len(chunk.Content)
	return nil
}

func runChat(_ *cobra.Command, _ []string) {
	svc, cfg, err := newService()
	if err != nil {
		logger.Fatal("Failed to initialize tutoring service", "error", err)
	}
	defer svc.Close()

	lctx := learningContextFromFlags(currentUser())
	persona := personaFromFlags(cfg)

	sess := svc.StartSession(lctx.UserID)
	defer func() {
		if err := svc.EndSession(sess.ID); err != nil {
			logger.Error("Failed to end session", "error", err)
		}
	}()

	fmt.Printf("EduMentor v%s - tutoring with %s\n", version, persona.Name)
	fmt.Println("Type your question, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		resp, err := svc.Converse(context.Background(), sess.ID, line, lctx, persona)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println(renderMarkdown(resp.Content))
		printSignals(resp)
	}

	state := svc.ConversationState(sess.ID)
	fmt.Printf("\nSession summary: understanding %.0f, engagement %.0f, frustration %.0f\n",
		state.UnderstandingLevel, state.EngagementLevel, state.FrustrationLevel)
	if summary, err := svc.SessionAnalytics(sess.ID); err == nil {
		fmt.Printf("Questions asked: %d, resolved: %d, sentiment: %s\n",
			summary.Engagement.QuestionCount, summary.Progress.ResolvedQuestions, summary.Sentiment.Overall)
		if len(summary.TopTopics) > 0 {
			fmt.Printf("Top topic: %s\n", summary.TopTopics[0].Topic)
		}
	}
}

func runBudget(_ *cobra.Command, _ []string) {
	svc, _, err := newService()
	if err != nil {
		logger.Fatal("Failed to initialize tutoring service", "error", err)
	}
	defer svc.Close()

	budget := svc.TokenBudgetStatus()
	fmt.Printf("Daily:   %d / %d tokens (%d remaining)\n", budget.Used, budget.DailyCap, budget.Remaining)
	fmt.Printf("Monthly: %d / %d tokens\n", budget.MonthlyUsed, budget.MonthlyCap)
}

func runPersonas(_ *cobra.Command, _ []string) {
	personas, err := prompt.LoadPersonaCatalog()
	if err != nil {
		logger.Fatal("Failed to load persona catalog", "error", err)
	}
	for _, p := range personas {
		fmt.Printf("%-16s %s (%s)\n", p.Name, p.Type, p.CommunicationStyle)
	}
}

// renderMarkdown pretty-prints generated markdown for the terminal, falling
// back to the raw text when rendering fails.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// printSignals surfaces the adaptive-teaching signals attached to a response.
func printSignals(resp *tutortypes.AIResponse) {
	for _, action := range resp.AdaptiveActions {
		fmt.Printf("  [adapt] %s: %s\n", action.Action, action.Reason)
	}
	for _, tp := range resp.TutorialPrompts {
		fmt.Printf("  [next] %s: %s\n", tp.Title, tp.Description)
	}
	if resp.AssessmentTrigger {
		fmt.Println("  [next] Assessment recommended")
	}
	for _, s := range resp.Suggestions {
		fmt.Printf("  [tip] %s\n", s)
	}
}
