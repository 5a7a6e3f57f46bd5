package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"coffeebot/internal/config"
	"coffeebot/internal/domain"
	"coffeebot/internal/invoker"
	"coffeebot/internal/repository"
	"coffeebot/internal/service"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	lambdaClient, err := invoker.NewLambdaClient(ctx, invoker.Credentials{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
	})
	if err != nil {
		log.Fatal(err)
	}

	chatSvc := service.NewChatService(
		invoker.NewLambdaInvoker(lambdaClient, cfg.LambdaFunctionName, logger),
		cfg.ContextWindowSize,
		logger,
	)
	sess := service.NewSession("", repository.NewMemoryTranscriptRepository())

	if err := runChat(ctx, os.Stdin, os.Stdout, chatSvc, sess); err != nil {
		log.Fatal(err)
	}
}

// runChat lee un prompt por línea hasta EOF o "salir"/"exit". "/clear" reinicia la charla.
func runChat(ctx context.Context, in io.Reader, out io.Writer, chatSvc *service.ChatService, sess *service.Session) error {
	reader := bufio.NewReader(in)
	sess.OnClear(func() { printBanner(out) })
	printBanner(out)

	for {
		fmt.Fprint(out, "You > ")
		text, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("leer input: %w", err)
		}
		atEOF := err == io.EOF

		text = strings.TrimSpace(text)
		switch {
		case text == "":
		case strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit"):
			fmt.Fprintln(out, "Bye! ☕")
			return nil
		case text == "/clear":
			if err := sess.Clear(ctx); err != nil {
				fmt.Fprintf(out, "error limpiando chat: %v\n", err)
			}
		default:
			turn, err := chatSvc.Handle(ctx, sess, text)
			if err != nil {
				fmt.Fprintf(out, "error procesando mensaje: %v\n", err)
				break
			}
			printTurn(out, turn)
		}

		if atEOF {
			return nil
		}
	}
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out, "===== Merry's Way Coffee Shop ☕ =====")
	fmt.Fprintln(out, "Type your coffee question. /clear resets the chat, 'exit' quits.")
}

func printTurn(out io.Writer, turn domain.ChatTurn) {
	fmt.Fprintf(out, "CoffeeBot > %s\n", turn.Content)
	if turn.Agent != "" && turn.Agent != domain.AgentNone {
		fmt.Fprintf(out, "            🧠 Agent used: %s\n", turn.Agent)
	}
}
