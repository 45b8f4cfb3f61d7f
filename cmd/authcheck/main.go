package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}
	client := NewAPIClient(apiURL)

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "register":
		err = registerCmd(client, args)
	case "login":
		err = loginCmd(client, args)
	case "validate":
		err = validateCmd(client, args)
	case "me":
		err = meCmd(client, args)
	case "logout":
		err = logoutCmd(client, args)
	case "flow":
		err = flowCmd(client, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`authcheck - Development tool for exercising the gateway's auth flow

USAGE:
  authcheck <command> [options]

COMMANDS:
  register  Create an account (prompts for the password)
  login     Log in and print the token
  validate  Check a token the way the client bootstraps its session
  me        Print the user behind a token
  logout    Revoke a token's session
  flow      Register, log in, validate and look up a throwaway user
  help      Show this help message

ENVIRONMENT:
  API_URL   Gateway URL (default: http://localhost:8080)
  TOKEN     Token for validate, me and logout when --token is not given

EXAMPLES:
  authcheck register --username=alice1 --name=Alice
  authcheck login --username=alice1
  authcheck validate --token=eyJ...`)
}

func registerCmd(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username (4-15 characters)")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email for password resets (optional)")
	fs.Parse(args)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := client.Register(*username, password, *name, *email)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (id %s)\n", user.Username, user.ID)
	return nil
}

func loginCmd(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "Username")
	fs.Parse(args)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := client.Login(*username, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (profile created: %v, completed: %v)\n",
		result.User.Username, result.User.ProfileCreated, result.User.ProfileCompleted)
	fmt.Printf("Token expires %s\n", result.ExpiresAt)
	fmt.Println(result.Token)
	return nil
}

func validateCmd(client *APIClient, args []string) error {
	token := tokenFlag("validate", args)
	result, err := client.Validate(token)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Println("Token is not valid")
		return nil
	}
	fmt.Printf("Token is valid (profile created: %v, completed: %v)\n", result.ProfileCreated, result.ProfileCompleted)
	return nil
}

func meCmd(client *APIClient, args []string) error {
	token := tokenFlag("me", args)
	user, err := client.Me(token)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) id %s\n", user.Name, user.Username, user.ID)
	return nil
}

func logoutCmd(client *APIClient, args []string) error {
	token := tokenFlag("logout", args)
	if err := client.Logout(token); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

// flowCmd walks a fresh account through the whole session lifecycle.
func flowCmd(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("flow", flag.ExitOnError)
	prefix := fs.String("prefix", "chk", "Username prefix")
	fs.Parse(args)

	username := fmt.Sprintf("%s%d", *prefix, os.Getpid()%100000)
	const password = "secret123"

	fmt.Printf("[1/5] register %s\n", username)
	if _, err := client.Register(username, password, "Auth Check", ""); err != nil {
		return err
	}

	fmt.Println("[2/5] login")
	login, err := client.Login(username, password)
	if err != nil {
		return err
	}

	fmt.Println("[3/5] validate")
	valid, err := client.Validate(login.Token)
	if err != nil {
		return err
	}
	if valid == nil {
		return fmt.Errorf("fresh token did not validate")
	}

	fmt.Println("[4/5] me")
	me, err := client.Me(login.Token)
	if err != nil {
		return err
	}
	if me.ID != login.User.ID {
		return fmt.Errorf("token resolved to %s, want %s", me.ID, login.User.ID)
	}

	fmt.Println("[5/5] logout")
	if err := client.Logout(login.Token); err != nil {
		return err
	}
	valid, err = client.Validate(login.Token)
	if err != nil {
		return err
	}
	if valid != nil {
		return fmt.Errorf("token still valid after logout")
	}

	fmt.Println("OK")
	return nil
}

func tokenFlag(name string, args []string) string {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	token := fs.String("token", os.Getenv("TOKEN"), "Token returned by login")
	fs.Parse(args)
	return *token
}

// readPassword reads without echo from a terminal, or a line from piped stdin.
func readPassword(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		fmt.Print(prompt)
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
