// ABOUTME: Login, logout, and whoami commands for dragon-catalog CLI
// ABOUTME: Manages the locally persisted session token

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/markalston/dragon-catalog/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

// Swappable in tests
var (
	readPassword    = term.ReadPassword
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session token",
	Long: `Check the username and password and store a session token in the config
directory. Missing values are prompted for; the password is read without echo.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		in := bufio.NewReader(os.Stdin)
		exitCode := runLogin(os.Stdout, in, loginUsername, loginPassword)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runWhoami(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

// runLogin verifies credentials and persists the session token
func runLogin(w io.Writer, in *bufio.Reader, username, password string) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}

	username, password, err = promptCredentials(w, in, username, password)
	if err != nil {
		return reportError(w, err)
	}

	if err := rt.guard.Login(username, password); err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]string{
			"state":    rt.guard.State().String(),
			"username": username,
		}))
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", username)
	}
	return 0
}

// promptCredentials fills in whichever of username and password is empty
func promptCredentials(w io.Writer, in *bufio.Reader, username, password string) (string, string, error) {
	var err error
	if username == "" {
		fmt.Fprint(w, "Username: ")
		if username, err = readLine(in); err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
	}

	if password == "" {
		fmt.Fprint(w, "Password: ")
		if stdinIsTerminal() {
			b, err := readPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(w)
			if err != nil {
				return "", "", fmt.Errorf("read password: %w", err)
			}
			password = string(b)
		} else if password, err = readLine(in); err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
	}

	return username, password, nil
}

// readLine reads one line, accepting a final line without a newline
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runLogout clears the stored session token
func runLogout(w io.Writer) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}

	if err := rt.guard.Logout(); err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]string{"state": rt.guard.State().String()}))
	} else {
		fmt.Fprintln(w, "Logged out")
	}
	return 0
}

// whoamiOutput is the JSON shape printed by whoami
type whoamiOutput struct {
	State     string     `json:"state"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	TokenID   string     `json:"token_id,omitempty"`
	ConfigDir string     `json:"config_dir"`
}

// runWhoami reports the session state and what the token says about it
func runWhoami(w io.Writer) int {
	rt, err := loadRuntime()
	if err != nil {
		return reportError(w, err)
	}

	out := whoamiOutput{
		State:     rt.guard.State().String(),
		ConfigDir: rt.cfg.ConfigDir,
	}

	token, ok, err := rt.guard.Token()
	if err != nil {
		return reportError(w, err)
	}
	if ok {
		if info, err := session.Describe(token); err == nil && !info.Opaque {
			out.Subject = info.Subject
			out.TokenID = info.ID
			if !info.IssuedAt.IsZero() {
				issued := info.IssuedAt
				out.IssuedAt = &issued
			}
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(out))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(out))
	}
	return 0
}

func formatWhoamiHuman(out whoamiOutput) string {
	if out.State != session.Authenticated.String() {
		return fmt.Sprintf("Not logged in\nConfig:    %s", out.ConfigDir)
	}
	s := "Logged in"
	if out.Subject != "" {
		s += " as " + out.Subject
	}
	if out.IssuedAt != nil {
		s += fmt.Sprintf("\nSince:     %s", out.IssuedAt.Local().Format(time.RFC1123))
	}
	return s + fmt.Sprintf("\nConfig:    %s", out.ConfigDir)
}
