//go:build windows

package platform

import (
	"fmt"
	"os/exec"
)

// Notify displays a balloon notification via PowerShell.
func Notify(title, body string, opts Options) error {
	script := fmt.Sprintf(`
[void][System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms')
$icon = New-Object System.Windows.Forms.NotifyIcon
$icon.Icon = [System.Drawing.SystemIcons]::Information
$icon.Visible = $true
$icon.ShowBalloonTip(5000, %q, %q, [System.Windows.Forms.ToolTipIcon]::Info)
Start-Sleep -Seconds 5
$icon.Dispose()`, title, body)
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}
