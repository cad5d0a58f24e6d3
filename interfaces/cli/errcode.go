package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lindoshq/lindos-go/domain/message"
)

// newErrcodeCmd creates the errcode command.
func (a *App) newErrcodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errcode [code]",
		Short: "Explain an error code",
		Long: `Print the explanation for an error code. With no argument, lists
every known code. Unknown codes still produce a usable message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, kind := range message.KnownKinds() {
					fmt.Fprintf(a.stdout, "%d\t%s\t%s\n", kind.Code(), kind, kind.Message())
				}
				return nil
			}

			code, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("not an error code: %q", args[0])
			}

			kind := message.KindFromCode(int32(code))
			fmt.Fprintf(a.stdout, "%d\t%s\t%s\n", kind.Code(), kind, kind.Message())
			return nil
		},
	}
}
