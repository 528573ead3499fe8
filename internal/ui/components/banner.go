package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

const bannerArt = `
 ███╗   ███╗ █████╗ ████████╗██╗  ██╗███████╗████████╗███████╗██████╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║██╔════╝╚══██╔══╝██╔════╝██╔══██╗
 ██╔████╔██║███████║   ██║   ███████║███████╗   ██║   █████╗  ██████╔╝
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║╚════██║   ██║   ██╔══╝  ██╔═══╝
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║███████║   ██║   ███████╗██║
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝   ╚═╝   ╚══════╝╚═╝`

const bannerCompact = "M A T H S T E P"

// bannerWidth is the widest art line; narrower terminals get the compact form.
const bannerWidth = 70

// Banner returns the MATHSTEP wordmark in the primary color.
func Banner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < bannerWidth+4 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
