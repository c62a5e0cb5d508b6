// This file implements the interactive chat REPL and the one-shot ask
// command.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"taskchat/internal/config"
	"taskchat/internal/logging"
	"taskchat/internal/types"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	taskStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	historyLimit = 20
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sess, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		// Hot-reload model settings while the session runs.
		if err := config.Watch(ctx, workspace, func(cfg config.Config) {
			logging.SetDebug(cfg.Logging.DebugMode || verbose)
		}); err != nil {
			logging.ConfigWarn("config watching disabled: %v", err)
		}

		renderer, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)

		fmt.Println(subtleStyle.Render("taskchat - type a message, /tasks, /memories or /quit"))

		var exchanges []types.Exchange
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(promptStyle.Render("you> "))
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				if done, err := runLocalCommand(ctx, sess, line); done {
					return err
				}
				continue
			}
			if ctx.Err() != nil {
				return nil
			}

			convCtx, err := buildContext(ctx, sess, exchanges)
			if err != nil {
				fmt.Println(errorStyle.Render("error: " + err.Error()))
				continue
			}

			result := sess.orch.ProcessTurn(ctx, line, projectID, convCtx, "")
			printResult(renderer, result)

			exchanges = append(exchanges, types.Exchange{
				UserText:   line,
				SystemText: result.Response,
				Timestamp:  time.Now(),
			})
			if len(exchanges) > historyLimit {
				exchanges = exchanges[len(exchanges)-historyLimit:]
			}
		}
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Process a single message and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sess, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		convCtx, err := buildContext(ctx, sess, nil)
		if err != nil {
			return err
		}

		renderer, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		result := sess.orch.ProcessTurn(ctx, strings.Join(args, " "), projectID, convCtx, "")
		printResult(renderer, result)
		return nil
	},
}

// buildContext assembles the per-turn conversation context. Tasks and
// memories are re-read every turn; the core never caches them.
func buildContext(ctx context.Context, sess *session, exchanges []types.Exchange) (types.ConversationContext, error) {
	tasks, err := sess.store.LoadTasks(ctx, projectID)
	if err != nil {
		return types.ConversationContext{}, err
	}
	memories, err := sess.store.LoadMemories(ctx, projectID)
	if err != nil {
		return types.ConversationContext{}, err
	}
	return types.ConversationContext{
		Exchanges:        exchanges,
		RelevantTasks:    tasks,
		RelevantMemories: memories,
		Project:          types.ProjectContext{Name: projectID},
	}, nil
}

// printResult renders one turn result to the terminal.
func printResult(renderer *glamour.TermRenderer, result *types.TurnResult) {
	response := result.Response
	if renderer != nil {
		if rendered, err := renderer.Render(response); err == nil {
			response = rendered
		}
	}

	switch result.Type {
	case types.TurnError:
		fmt.Println(errorStyle.Render(strings.TrimSpace(response)))
	default:
		fmt.Println(strings.TrimRight(response, "\n"))
	}

	for _, task := range result.Tasks {
		fmt.Println(taskStyle.Render(fmt.Sprintf("  + task %s [%s] %s", task.ID, task.Priority, task.Title)))
	}
	for _, memory := range result.Memories {
		fmt.Println(taskStyle.Render(fmt.Sprintf("  + %s memory: %s", memory.Type, memory.Title)))
	}
}

// runLocalCommand handles /quit, /tasks and /memories. The bool return
// says whether the REPL should exit.
func runLocalCommand(ctx context.Context, sess *session, line string) (bool, error) {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/tasks":
		tasks, err := sess.store.LoadTasks(ctx, projectID)
		if err != nil {
			return false, err
		}
		if len(tasks) == 0 {
			fmt.Println(subtleStyle.Render("no tasks yet"))
			return false, nil
		}
		for _, t := range tasks {
			indent := ""
			if !t.IsRoot() {
				indent = "    "
			}
			status := " "
			if t.Completed {
				status = "x"
			}
			fmt.Printf("%s[%s] %s (%s)\n", indent, status, t.Title, t.Priority)
		}
	case "/memories":
		memories, err := sess.store.LoadMemories(ctx, projectID)
		if err != nil {
			return false, err
		}
		if len(memories) == 0 {
			fmt.Println(subtleStyle.Render("no memories yet"))
			return false, nil
		}
		for _, m := range memories {
			fmt.Printf("[%s] %s: %s\n", m.Type, m.Title, m.Content)
		}
	default:
		fmt.Println(subtleStyle.Render("commands: /tasks /memories /quit"))
	}
	return false, nil
}
