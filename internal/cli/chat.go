package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/Rrens/knowledge-drive/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, cleanup, err := buildManager(ctx, printPhase)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := m.Initialize(ctx); err != nil {
			return err
		}

		printTranscript(m.Messages())
		fmt.Printf("%d knowledge file(s) loaded. Type /help for commands.\n", len(m.KnowledgeFiles()))

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				quit, err := runChatCommand(cmd, m, line)
				if err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
				}
				if quit {
					return nil
				}
				continue
			}

			if err := m.SendMessage(ctx, line); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				continue
			}
			if msgs := m.Messages(); len(msgs) > 0 {
				last := msgs[len(msgs)-1]
				if last.Role == domain.RoleModel {
					fmt.Println(last.Text)
				}
			}
		}
	},
}

func runChatCommand(cmd *cobra.Command, m *service.Manager, line string) (quit bool, err error) {
	ctx := cmd.Context()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Println(`/list          list conversations
/switch <n>    switch to conversation n
/new           start a new conversation
/delete        delete the current conversation
/files         list knowledge files
/quit          leave the chat`)

	case "/list":
		active := m.ActiveConversationID()
		for i, c := range m.Conversations() {
			marker := " "
			if c.ID == active {
				marker = "*"
			}
			fmt.Printf("%s %2d  %s\n", marker, i+1, c.Name)
		}

	case "/switch":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /switch <n>")
		}
		n, convErr := strconv.Atoi(fields[1])
		convos := m.Conversations()
		if convErr != nil || n < 1 || n > len(convos) {
			return false, fmt.Errorf("no conversation %s", fields[1])
		}
		if err := m.ActivateConversation(ctx, convos[n-1].ID); err != nil {
			return false, err
		}
		printTranscript(m.Messages())

	case "/new":
		if _, err := m.CreateConversation(ctx); err != nil {
			return false, err
		}
		fmt.Println("Started a new conversation.")

	case "/delete":
		if !confirm("Delete the current conversation?") {
			return false, nil
		}
		if err := m.DeleteConversation(ctx, m.ActiveConversationID()); err != nil {
			return false, err
		}
		printTranscript(m.Messages())

	case "/files":
		for _, f := range m.KnowledgeFiles() {
			fmt.Printf("%s  %s\n", f.ID, f.Name)
		}

	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func printTranscript(msgs []domain.ChatMessage) {
	for _, msg := range msgs {
		fmt.Printf("[%s] %s\n", msg.Role, msg.Text)
	}
}

func printPhase(phase string) {
	if phase != "" {
		fmt.Fprintln(os.Stderr, phase)
	}
}

// confirm asks a yes/no question on the terminal.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
