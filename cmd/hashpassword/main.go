// Command hashpassword prints a bcrypt hash for ORGANIZER_PASSWORD_HASH.
// The password is read from the first argument or from stdin.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Dosada05/tournament-draws/utils"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	password, err := readPassword(os.Args[1:])
	if err != nil {
		logger.Error("failed to read password", slog.Any("error", err))
		os.Exit(1)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
