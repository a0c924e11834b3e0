package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultWidth = 80

const moon = `     . - ^ ~ * ~ ^ - .
 , '                   ' ,
:                       :
:      .      .      .   :
:    '   .  "   . '    ' :
 :   ~  MOONLIGHTER  ~   :
  : , '             ' , :
   ' .               . '
     ' - . _ _ _ . - '`

var (
	moonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8E3C8")).Padding(1, 4)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8FA8FF")).Italic(true).PaddingLeft(4)
)

// Width returns the width of the terminal behind w, or 80 columns if w is not
// a terminal.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok && Interactive(f) {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

// HLine prints a horizontal rule across the terminal.
func HLine(w io.Writer, char rune) {
	fmt.Fprintln(w, strings.Repeat(string(char), Width(w)))
}

// Title turns a file name such as "mond_1.mid" into "Mond 1".
func Title(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// Banner prints the moon, with the title of the piece below it.
func Banner(w io.Writer, title string) {
	fmt.Fprintln(w, moonStyle.Render(moon))
	fmt.Fprintln(w, titleStyle.Render("Enjoy the Moonlight ... "+title))
}
