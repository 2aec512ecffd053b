/*
Package cli provides command-line utilities shared by the augur command.

Output formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal handling for commands that block, such as rule-file watching:

	ctx, stop := cli.SignalContext()
	defer stop()

Exit codes map the engine's error taxonomy onto conventional shell
exit codes via ExitCode.
*/
package cli
