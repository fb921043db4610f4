package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/checkmarxDev/kb-wrapper/internal/terraform"
	"github.com/checkmarxDev/kb-wrapper/pkg/message"
	"github.com/checkmarxDev/kb-wrapper/pkg/models"
	"github.com/checkmarxDev/kb-wrapper/pkg/wrapper"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	outputKnowledgeBaseID = "knowledge_base_id"
	outputRegion          = "aws_region"
	separatorWidth        = 80
)

var (
	errMissingQuestion      = errors.New("missing question argument")
	errMissingKnowledgeBase = errors.New("could not get knowledge_base_id from terraform output")
	errInvalidResults       = errors.New("invalid number of results")
	errQueryFailed          = errors.New("query failed")
)

type app struct {
	stdout io.Writer
	stderr io.Writer

	newResolver func(binary, dir string) terraform.OutputResolver
	newWrapper  func(ctx context.Context, knowledgeBaseID, region, modelArn string) (wrapper.KnowledgeBaseWrapper, error)

	modelArn     string
	terraformBin string
	terraformDir string
	sessionID    string
	results      int
	citations    bool
	verbose      bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		newResolver: func(binary, dir string) terraform.OutputResolver {
			return terraform.NewOutputReader(binary, dir)
		},
		newWrapper: wrapper.NewKnowledgeBaseWrapper,
	}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           `query-kb "<question>"`,
		Short:         "Query the Bedrock knowledge base",
		Long:          `Ask a question to the Bedrock knowledge base deployed by Terraform, using the retrieve-and-generate API`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		a.printUsage()
		fmt.Fprintln(a.stdout, `Use -- before a question starting with "-": query-kb -- "-5 degrees is cold?"`)
		return err
	})
	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVarP(&a.modelArn, "model-arn", "m", "", "Foundation model ARN (default: Claude v2 in the resolved region)")
	flags.StringVar(&a.terraformBin, "terraform-bin", terraform.DefaultBinary, "Terraform executable used to read outputs")
	flags.StringVar(&a.terraformDir, "terraform-dir", "", "Directory to run terraform in")
	flags.StringVarP(&a.sessionID, "session-id", "s", "", "Continue an existing retrieve-and-generate session")
	flags.IntVarP(&a.results, "results", "n", 0, "Number of passages to retrieve (default: service default)")
	flags.BoolVarP(&a.citations, "citations", "c", false, "Print the locations of the retrieved references")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func (a *app) execute(ctx context.Context, args []string) int {
	a.setupLogging()
	if args == nil {
		args = []string{}
	}
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		switch {
		case errors.Is(err, errMissingQuestion), errors.Is(err, errMissingKnowledgeBase),
			errors.Is(err, errInvalidResults), errors.Is(err, errQueryFailed):
			log.Debug().Err(err).Msg("query-kb failed")
		default:
			log.Error().Err(err).Msg("query-kb failed")
		}
		return 1
	}
	return 0
}

func (a *app) setupLogging() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func (a *app) run(ctx context.Context, args []string) error {
	if a.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if len(args) < 1 {
		a.printUsage()
		return errMissingQuestion
	}
	if a.results < 0 || a.results > math.MaxInt32 {
		fmt.Fprintf(a.stdout, "Error: --results must be between 0 and %d, got %d\n", math.MaxInt32, a.results)
		return errInvalidResults
	}
	question := args[0]

	outputs := a.newResolver(a.terraformBin, a.terraformDir)
	knowledgeBaseID, err := outputs.Output(ctx, outputKnowledgeBaseID)
	if err != nil {
		knowledgeBaseID = ""
	}
	region, err := outputs.Output(ctx, outputRegion)
	if err != nil {
		region = ""
	}

	if knowledgeBaseID == "" {
		fmt.Fprintln(a.stdout, "Error: Could not get knowledge_base_id from Terraform output")
		fmt.Fprintln(a.stdout, "Make sure you have deployed the infrastructure with 'terraform apply'")
		return errMissingKnowledgeBase
	}
	if region == "" {
		region = models.DefaultRegion
	}

	fmt.Fprintln(a.stdout, "Querying knowledge base...")
	fmt.Fprintf(a.stdout, "Question: %s\n", question)
	fmt.Fprintf(a.stdout, "Knowledge Base ID: %s\n", knowledgeBaseID)
	fmt.Fprintf(a.stdout, "Region: %s\n", region)
	fmt.Fprintln(a.stdout)

	kb, err := a.newWrapper(ctx, knowledgeBaseID, region, a.modelArn)
	if err != nil {
		fmt.Fprintf(a.stdout, "Error querying knowledge base: %v\n", err)
		return err
	}
	answer, err := kb.Ask(ctx, question, wrapper.WithSessionID(a.sessionID), wrapper.WithNumberOfResults(a.results))
	if err != nil {
		fmt.Fprintf(a.stdout, "Error querying knowledge base: %v\n", err)
		// already logged by the knowledge base client
		return fmt.Errorf("%w: %w", errQueryFailed, err)
	}
	a.printAnswer(answer)
	return nil
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stdout, `Usage: query-kb "Your question here"`)
	fmt.Fprintln(a.stdout, `Example: query-kb "What is this document about?"`)
}

func (a *app) printAnswer(answer *message.Answer) {
	separator := strings.Repeat("=", separatorWidth)
	fmt.Fprintln(a.stdout, "Response:")
	fmt.Fprintln(a.stdout, separator)
	fmt.Fprintln(a.stdout, answer.Text)
	fmt.Fprintln(a.stdout, separator)

	if !a.citations {
		return
	}
	locations := answer.Locations()
	if len(locations) == 0 {
		fmt.Fprintln(a.stdout, "No references returned")
		return
	}
	fmt.Fprintln(a.stdout, "References:")
	for i, location := range locations {
		fmt.Fprintf(a.stdout, "  [%d] %s\n", i+1, location)
	}
}
