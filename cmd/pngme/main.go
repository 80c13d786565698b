package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/ysh86/pngme"
	"golang.org/x/term"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pngme",
		Short:         "Hide messages in PNG chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newRemoveCmd(), newPrintCmd())
	return root
}

func newEncodeCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "encode <file> <type> [message] [output]",
		Short: "Append a chunk holding message",
		Long: "Append a chunk of the given type holding message to file. The result is\n" +
			"written to output, or back to file. With --from the payload is read\n" +
			"from a file and the arguments are <file> <type> [output].",
		Args: func(cmd *cobra.Command, args []string) error {
			if from != "" {
				return cobra.RangeArgs(2, 3)(cmd, args)
			}
			return cobra.RangeArgs(3, 4)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, chunkType := args[0], args[1]
			if from != "" {
				payload, err := os.ReadFile(from)
				if err != nil {
					return err
				}
				return pngme.EncodeBytes(path, chunkType, payload, argAt(args, 2))
			}
			return pngme.Encode(path, chunkType, args[2], argAt(args, 3))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "read the payload from this file")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file> <type>",
		Short: "Print the message in the first chunk of type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := pngme.Decode(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <type>",
		Short: "Remove the first chunk of type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := pngme.Remove(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed chunk '%s' (%d bytes)\n", c.Type(), c.Length())
			return nil
		},
	}
}

func newPrintCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "List the chunks of file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if f, ok := w.(*os.File); ok && !plain && term.IsTerminal(int(f.Fd())) {
				chunks, err := pngme.List(args[0])
				if err != nil {
					return err
				}
				printTable(w, chunks)
				return nil
			}
			return pngme.Print(w, args[0])
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "plain output even on a terminal")
	return cmd
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func exitCode(err error) int {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return 2
	}
	return 1
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("pngme: ")

	if err := newRootCmd().Execute(); err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}
