package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/ui"
)

func (r *runner) doAuthLogin(args []string) int {
	var token string
	switch len(args) {
	case 0:
		fmt.Fprint(ui.Stdout, "Paste your token: ")
		line, err := bufio.NewReader(r.opt.In).ReadString('\n')
		if err != nil && line == "" {
			ui.Fail("read token: " + err.Error())
			return 1
		}
		token = strings.TrimSpace(line)
	case 1:
		token = args[0]
	default:
		return usage("auth login [token]", nil)
	}

	u, err := r.files().Login(token)
	if err != nil {
		ui.Fail("login: " + err.Error())
		return 1
	}
	ui.OK("logged in as " + display(u))
	return 0
}

func (r *runner) doAuthLogout() int {
	err := r.files().SignOut()
	if errors.Is(err, auth.ErrEnvToken) {
		ui.OK(err.Error())
		return 0
	}
	if err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func (r *runner) doAuthStatus() int {
	ti, err := r.files().Creds.GetToken()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(ui.Stdout, ui.Muted("not logged in"))
		fmt.Fprintln(ui.Stdout, "Run: tasktracker auth login")
		return 0
	}
	fmt.Fprintf(ui.Stdout, "source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		exp := ti.ExpiresAt.UTC().Format(time.RFC3339)
		if ti.Expired(time.Now()) {
			exp += " " + ui.Current().Error.Render("(expired)")
		}
		fmt.Fprintf(ui.Stdout, "expires: %s\n", exp)
	} else {
		fmt.Fprintln(ui.Stdout, "expires: (unknown)")
	}
	fmt.Fprintln(ui.Stdout, "env override: "+auth.TokenEnv)
	return 0
}

func (r *runner) doAuthWhoAmI() int {
	u, err := r.files().Resolve()
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	if u == nil {
		ui.Fail("not logged in. Run: tasktracker auth login")
		return 2
	}
	fmt.Fprintf(ui.Stdout, "id:    %s\nemail: %s\n", u.ID, u.Email)
	if len(r.cfg.JWTSecret) == 0 {
		fmt.Fprintln(ui.Stdout, ui.Muted("(signature not verified: TASKTRACKER_JWT_SECRET is unset)"))
	}
	return 0
}

// doAuthIssue mints a token for the local backends, which have no auth
// service of their own.
func (r *runner) doAuthIssue(args []string) int {
	fs := newFlags("auth issue")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")
	id := fs.String("id", "", "user id (default: new uuid)")
	login := fs.Bool("login", false, "store the token as the current login")
	pos, err := parseArgs(fs, args)
	if err != nil || len(pos) != 1 {
		return usage("auth issue <email>", err)
	}

	token, u, err := auth.Issue([]byte(r.cfg.JWTSecret), auth.User{ID: *id, Email: pos[0]}, *ttl)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if *login {
		if _, err := r.files().Login(token); err != nil {
			ui.Fail("login: " + err.Error())
			return 1
		}
		ui.OK("logged in as " + display(&u))
		return 0
	}
	fmt.Fprintln(ui.Stdout, token)
	return 0
}

func display(u *auth.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
