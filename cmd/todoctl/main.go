package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"taskList/internal/client"
	"taskList/internal/logger"

	"github.com/spf13/pflag"
)

const usage = `Использование: todoctl [флаги] <команда> [аргументы]

Команды:
  list               показать задачи
  add <текст>        добавить задачу
  done <id>          отметить выполненной
  undo <id>          вернуть в работу
  edit <id> <текст>  изменить описание
  rm <id>            удалить задачу
  clear              удалить выполненные
  purge              удалить все задачи

Флаги:
`

type options struct {
	server string
	output string
	yes    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "todoctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("todoctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVarP(&opts.server, "server", "s", envOr("TASKS_SERVER_URL", "http://localhost:8080"), "адрес API")
	flags.StringVarP(&opts.output, "output", "o", "table", "формат вывода: table, json, yaml")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "не спрашивать подтверждение")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("не указана команда")
	}

	render, err := renderer(opts.output)
	if err != nil {
		return err
	}

	// предупреждения клиента о неудачных действиях видны пользователю
	if err := logger.Init(true); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(opts.server)
	session := client.NewSession(c, newPrompt(stdin, stderr, opts.yes))

	command, rest := flags.Arg(0), flags.Args()[1:]
	switch command {
	case "list":
		tasks, err := c.List(ctx)
		if err != nil {
			return err
		}
		return render(stdout, client.NewView(tasks))

	case "add":
		if _, err := session.Add(ctx, strings.Join(rest, " ")); err != nil {
			return err
		}

	case "done", "undo":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		session.Toggle(ctx, id, command == "done")

	case "edit":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if _, err := session.Edit(ctx, id, strings.Join(rest[1:], " ")); err != nil {
			return err
		}

	case "rm":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if !session.Remove(ctx, id) {
			return nil
		}

	case "clear":
		session.Refresh(ctx)
		removed := session.ClearCompleted(ctx)
		fmt.Fprintf(stderr, "удалено выполненных задач: %d\n", removed)

	case "purge":
		session.Refresh(ctx)
		count, err := session.DeleteAll(ctx)
		if errors.Is(err, client.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "удалено задач: %d\n", count)

	default:
		flags.Usage()
		return fmt.Errorf("неизвестная команда %q", command)
	}

	return render(stdout, session.View())
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("не указан id задачи")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный id задачи: %q", args[0])
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newPrompt спрашивает y/N в терминале; с --yes всегда соглашается
func newPrompt(in io.Reader, out io.Writer, yes bool) client.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		if yes {
			return true
		}
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes", "д", "да":
			return true
		default:
			return false
		}
	}
}
