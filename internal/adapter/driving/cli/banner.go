package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/diillson/aws-log-remediator/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer, versionStr string) {
	banner := `
     _                  ____                          _ _       _
    | |    ___   __ _  |  _ \ ___ _ __ ___   ___  __| (_) __ _| |_ ___  _ __
    | |   / _ \ / _' | | |_) / _ \ '_ ' _ \ / _ \/ _' | |/ _' | __/ _ \| '__|
    | |__| (_) | (_| | |  _ <  __/ | | | | |  __/ (_| | | (_| | || (_) | |
    |_____\___/ \__, | |_| \_\___|_| |_| |_|\___|\__,_|_|\__,_|\__\___/|_|
                |___/
    `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	if versionStr != "" && versionStr != version.Version {
		formattedVersion = versionStr
	}
	fmt.Fprintln(w, blue(fmt.Sprintf("AWS Log Remediator (v%s)", formattedVersion)))
}
