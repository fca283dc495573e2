// Package console implements the interactive client management menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/matiscalella/fitzone/internal/core/domain"
	"github.com/matiscalella/fitzone/internal/core/repository"
)

type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Menu options as typed by the user
const (
	OptionExit   = 0
	OptionList   = 1
	OptionFind   = 2
	OptionAdd    = 3
	OptionUpdate = 4
	OptionDelete = 5
)

// errEndOfInput ends the loop when stdin is closed mid-session.
var errEndOfInput = errors.New("end of input")

// Menu is a single-threaded read-evaluate-print loop over a ClientRepository.
type Menu struct {
	repo   repository.ClientRepository
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
	state  State
	err    error // first write error
}

func NewMenu(repo repository.ClientRepository, in io.Reader, out io.Writer, logger *slog.Logger) *Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return &Menu{
		repo:   repo,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		state:  StateRunning,
	}
}

func (m *Menu) State() State {
	return m.state
}

// Run loops until the user picks the exit option or input ends. It returns an
// error only when ctx is cancelled or output cannot be written; repository
// failures are reported to the user and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	m.logger.Info("menu session started")
	defer m.logger.Info("menu session ended")

	for m.state == StateRunning {
		if err := ctx.Err(); err != nil {
			m.state = StateTerminated
			return err
		}

		m.printMenu()
		option, err := m.readInt("Choose an option: ")
		if err != nil {
			m.terminate()
			break
		}

		m.dispatch(ctx, option)

		if m.err != nil {
			m.state = StateTerminated
			return fmt.Errorf("failed to write output: %w", m.err)
		}
	}

	return m.err
}

func (m *Menu) dispatch(ctx context.Context, option int) {
	m.logger.Debug("menu option selected", "option", option)

	var err error
	switch option {
	case OptionList:
		m.listClients(ctx)
	case OptionFind:
		err = m.findClient(ctx)
	case OptionAdd:
		err = m.addClient(ctx)
	case OptionUpdate:
		err = m.updateClient(ctx)
	case OptionDelete:
		err = m.deleteClient(ctx)
	case OptionExit:
		m.println("Exiting application...")
		m.state = StateTerminated
	default:
		m.println("Invalid option. Please try again.")
	}

	if errors.Is(err, errEndOfInput) {
		m.terminate()
	}
}

func (m *Menu) terminate() {
	m.println()
	m.println("Input closed. Exiting application...")
	m.state = StateTerminated
}

func (m *Menu) printMenu() {
	m.println()
	m.println("=== FIT ZONE - CLIENT MENU ===")
	m.println("[1] List clients")
	m.println("[2] Find client by ID")
	m.println("[3] Add client")
	m.println("[4] Update client")
	m.println("[5] Delete client")
	m.println("[0] Exit")
}

func (m *Menu) listClients(ctx context.Context) {
	m.println()
	m.println("--- Client List ---")

	clients, err := m.repo.FindAll(ctx)
	if err != nil {
		m.reportError(err)
		return
	}

	if len(clients) == 0 {
		m.println("No clients found.")
		return
	}
	for _, client := range clients {
		m.println(client)
	}
}

func (m *Menu) findClient(ctx context.Context) error {
	id, err := m.readInt("Enter client ID: ")
	if err != nil {
		return err
	}

	client, err := m.repo.FindByID(ctx, int64(id))
	if err != nil {
		m.reportError(err)
		return nil
	}

	m.println(client)
	return nil
}

func (m *Menu) addClient(ctx context.Context) error {
	name, surname, code, err := m.readClientFields("Enter name: ", "Enter surname: ", "Enter membership code: ")
	if err != nil {
		return err
	}

	client := domain.NewClient(name, surname, code)
	if _, err := m.repo.Save(ctx, client); err != nil {
		m.reportError(err)
		return nil
	}

	m.printf("Client added successfully (ID %d).\n", client.ID)
	return nil
}

func (m *Menu) updateClient(ctx context.Context) error {
	id, err := m.readInt("Enter client ID to update: ")
	if err != nil {
		return err
	}

	name, surname, code, err := m.readClientFields("Enter new name: ", "Enter new surname: ", "Enter new membership code: ")
	if err != nil {
		return err
	}

	client := &domain.Client{
		ID:             int64(id),
		Name:           name,
		Surname:        surname,
		MembershipCode: code,
	}
	// Ids below 1 never match a row, same as find and delete.
	if !client.IsPersistent() {
		m.reportError(repository.ErrClientNotFound)
		return nil
	}
	if err := m.repo.Update(ctx, client); err != nil {
		m.reportError(err)
		return nil
	}

	m.println("Client updated successfully.")
	return nil
}

func (m *Menu) deleteClient(ctx context.Context) error {
	id, err := m.readInt("Enter client ID to delete: ")
	if err != nil {
		return err
	}

	if err := m.repo.Delete(ctx, int64(id)); err != nil {
		m.reportError(err)
		return nil
	}

	m.println("Client deleted successfully.")
	return nil
}

func (m *Menu) readClientFields(namePrompt, surnamePrompt, codePrompt string) (string, string, int, error) {
	name, err := m.readLine(namePrompt)
	if err != nil {
		return "", "", 0, err
	}
	surname, err := m.readLine(surnamePrompt)
	if err != nil {
		return "", "", 0, err
	}
	code, err := m.readInt(codePrompt)
	if err != nil {
		return "", "", 0, err
	}
	return name, surname, code, nil
}

// reportError turns a repository failure into one of the fixed user messages.
func (m *Menu) reportError(err error) {
	switch {
	case errors.Is(err, repository.ErrClientNotFound):
		m.println("Client not found.")
	case errors.Is(err, repository.ErrInvalidClient):
		m.println("Invalid client data.")
	case repository.IsConnectionError(err):
		m.println("Error: could not reach the database.")
	default:
		m.printf("Error: %v\n", err)
	}
}

// readLine prints prompt and returns the next line without its line ending.
// A final line without a newline is still returned.
func (m *Menu) readLine(prompt string) (string, error) {
	m.print(prompt)

	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", errEndOfInput
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readInt keeps asking until a whole line parses as an integer.
func (m *Menu) readInt(prompt string) (int, error) {
	line, err := m.readLine(prompt)
	for {
		if err != nil {
			return 0, err
		}
		// Values must fit the INT columns.
		if n, convErr := strconv.ParseInt(strings.TrimSpace(line), 10, 32); convErr == nil {
			return int(n), nil
		}
		line, err = m.readLine("Please enter a valid number: ")
	}
}

func (m *Menu) print(a ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprint(m.out, a...)
}

func (m *Menu) println(a ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintln(m.out, a...)
}

func (m *Menu) printf(format string, a ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.out, format, a...)
}
