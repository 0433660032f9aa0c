// Command taskctl is a thin CLI over the task store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ngenohkevin/taskdeck/internal/client"
	"github.com/ngenohkevin/taskdeck/internal/exitcode"
	"github.com/ngenohkevin/taskdeck/internal/store"
)

const usage = `usage: taskctl [flags] <command> [args]

Commands:
  list                        show all tasks
  search <query>              filter tasks by name
  add <id> <name> <owner> <command>
                              create a task
  rm <id>                     delete a task
  run <id>                    execute a task and print its output

Flags:
  -url      task API base URL (default $API_URL or http://localhost:8092)
  -key      API key or token (default $API_KEY)
  -timeout  request timeout in seconds (default 30)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	url := fs.String("url", envOr("API_URL", "http://localhost:8092"), "")
	key := fs.String("key", os.Getenv("API_KEY"), "")
	timeout := fs.Int("timeout", 30, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(errOut, usage)
		return exitcode.UserError
	}

	s := store.New(client.New(*url, *key, time.Duration(*timeout)*time.Second))
	ctx := context.Background()

	switch cmd := rest[0]; cmd {
	case "list":
		return listTasks(ctx, s, out, errOut)
	case "search":
		if len(rest) != 2 {
			fmt.Fprintln(errOut, "error: search needs a query")
			return exitcode.UserError
		}
		return searchTasks(ctx, s, rest[1], out, errOut)
	case "add":
		if len(rest) != 5 {
			fmt.Fprintln(errOut, "error: add needs <id> <name> <owner> <command>")
			return exitcode.UserError
		}
		return addTask(ctx, s, store.Task{ID: rest[1], Name: rest[2], Owner: rest[3], Command: rest[4]}, out, errOut)
	case "rm":
		if len(rest) != 2 {
			fmt.Fprintln(errOut, "error: rm needs an id")
			return exitcode.UserError
		}
		return removeTask(ctx, s, rest[1], out, errOut)
	case "run":
		if len(rest) != 2 {
			fmt.Fprintln(errOut, "error: run needs an id")
			return exitcode.UserError
		}
		return runTask(ctx, s, rest[1], out, errOut)
	default:
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmd)
		return exitcode.UserError
	}
}

func listTasks(ctx context.Context, s *store.Store, out, errOut io.Writer) int {
	tasks, err := s.List(ctx)
	if err != nil {
		return reportError(err, errOut)
	}
	printTasks(out, tasks)
	return exitcode.Success
}

func searchTasks(ctx context.Context, s *store.Store, query string, out, errOut io.Writer) int {
	if _, err := s.List(ctx); err != nil {
		return reportError(err, errOut)
	}
	var hits []store.Task
	for t := range s.Search(query) {
		hits = append(hits, t)
	}
	printTasks(out, hits)
	return exitcode.Success
}

func addTask(ctx context.Context, s *store.Store, t store.Task, out, errOut io.Writer) int {
	if err := s.Create(ctx, t); err != nil {
		return reportError(err, errOut)
	}
	fmt.Fprintf(out, "created %s\n", t.ID)
	return exitcode.Success
}

func removeTask(ctx context.Context, s *store.Store, id string, out, errOut io.Writer) int {
	if _, err := s.List(ctx); err != nil {
		return reportError(err, errOut)
	}
	if err := s.Remove(ctx, id); err != nil {
		return reportError(err, errOut)
	}
	fmt.Fprintf(out, "deleted %s\n", id)
	return exitcode.Success
}

func runTask(ctx context.Context, s *store.Store, id string, out, errOut io.Writer) int {
	if _, err := s.List(ctx); err != nil {
		return reportError(err, errOut)
	}
	output, err := s.Execute(ctx, id)
	if err != nil {
		var ef *store.ExecutionFailed
		if errors.As(err, &ef) && ef.Output != "" {
			fmt.Fprint(out, ef.Output)
		}
		return reportError(err, errOut)
	}
	fmt.Fprint(out, output)
	return exitcode.Success
}

func printTasks(out io.Writer, tasks []store.Task) {
	for _, t := range tasks {
		fmt.Fprintf(out, "%-12s  %-24s  %-12s  %s\n", t.ID, t.Name, t.Owner, t.Command)
	}
}

func reportError(err error, errOut io.Writer) int {
	fmt.Fprintf(errOut, "error: %s\n", err)

	var ve *store.ValidationError
	var nf *store.NotFoundError
	if errors.As(err, &ve) || errors.As(err, &nf) {
		return exitcode.UserError
	}
	return exitcode.BackendError
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
