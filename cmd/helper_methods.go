package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	apperrors "github.com/xaam-platform/envelope/internal/errors"
	"github.com/xaam-platform/envelope/internal/ui"

	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatError turns a workflow error into a user-facing message with a hint where one helps.
func formatError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNoIdentityConfigured):
		return ui.ErrorLine("No identity configured") + "\n" +
			ui.HintLine("Run "+ui.Code.Sprint("envelope keys generate")+" first")

	case errors.Is(err, apperrors.ErrIdentityNotFound):
		return ui.ErrorLine(err.Error()) + "\n" +
			ui.HintLine("Run "+ui.Code.Sprint("envelope keys list")+" to see stored identities")

	case errors.Is(err, apperrors.ErrIdentityExists):
		return ui.ErrorLine(err.Error()) + "\n" +
			ui.HintLine("Use "+ui.Flag.Sprint("--force")+" to replace it")

	case errors.Is(err, apperrors.ErrRecipientNotFound):
		return ui.ErrorLine(err.Error()) + "\n" +
			ui.HintLine("Run "+ui.Code.Sprint("envelope recipients add <id> <public-key>")+" or pass "+ui.Flag.Sprint("--key id=<public-key>"))

	case errors.Is(err, apperrors.ErrNoRecipients):
		return ui.ErrorLine("No recipients given") + "\n" +
			ui.HintLine("Use "+ui.Flag.Sprint("--to")+", "+ui.Flag.Sprint("--key")+" or "+ui.Flag.Sprint("--self"))

	case errors.Is(err, apperrors.ErrUnknownRecipient):
		return ui.ErrorLine("This file was not sealed for you") + "\n" +
			ui.HintLine("Run "+ui.Code.Sprint("envelope inspect <file>")+" to see its recipients")

	case errors.Is(err, apperrors.ErrAuthenticationFailure):
		return ui.ErrorLine("Failed to open: the key does not match or the file was modified")

	case errors.Is(err, apperrors.ErrNoFilesFound):
		return ui.ErrorLine("No matching files found")

	case errors.Is(err, apperrors.ErrInvalidRecipientKey),
		errors.Is(err, apperrors.ErrInvalidEncoding),
		errors.Is(err, apperrors.ErrMalformedPlaintext),
		errors.Is(err, apperrors.ErrInvalidIdentifier),
		errors.Is(err, apperrors.ErrFileNotFound),
		errors.Is(err, apperrors.ErrInvalidFileType):
		return ui.ErrorLine(err.Error())

	default:
		return ui.ErrorLine("Error: " + err.Error())
	}
}

// ErrReported marks an error whose message was already shown to the user.
var ErrReported = errors.New("error already reported")

// reportError shows err as the spinner's final message and marks it reported.
func reportError(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	return fmt.Errorf("%w: %w", ErrReported, err)
}

// warnInsecureKey warns when a private key file is readable by others.
func warnInsecureKey(secure bool, perm os.FileMode, path string) {
	if !secure {
		Logger.WarnfAlways("Private key file has overly permissive permissions (%o), consider running 'chmod 600 %s'", perm, path)
	}
}
