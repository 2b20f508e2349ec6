/*
Package cli provides command-line helpers for the sentinel command.

Output Formatting:

Command results are printed as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, usage); err != nil {
		return err
	}

Values implementing Table are printed by the text formatter as aligned
columns, one row per line.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
