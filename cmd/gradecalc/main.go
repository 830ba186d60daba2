// @title           CGPA Calculator API
// @version         1.0.0
// @description     SGPA and CGPA calculation with PDF report export.
// @BasePath        /
package main

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/cgpa-calculator/internal/cli"
	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/server"
)

// Input problems exit 2, everything else 1.
func main() {
	if err := cli.NewRootCmd(server.Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if apperrors.IsUserError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
