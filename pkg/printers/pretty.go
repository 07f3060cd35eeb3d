package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/kako-rgb/djnoday/pkg/engine"
)

type PrettyPrint struct {
	ShowID bool
}

var (
	spacing = strings.Repeat(" ", len("01HZXW8Q4R5T6Y7U8I9O0P1A2S  "))
)

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Println(title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" request")
	default:
		_, _ = c.Println(" requests")
	}
}

// Stale prints the offline banner shown when the view is served from the
// local snapshot instead of the remote store.
func (pp *PrettyPrint) Stale() {
	w := color.New(color.FgHiYellow, color.Italic)
	if pp.ShowID {
		_, _ = w.Print(spacing)
	}
	_, _ = w.Println("offline - showing last known requests")
}

// Requests prints the merged view, newest first. Pending rows carry a
// sending marker, rows with a failed delete carry the error.
func (pp *PrettyPrint) Requests(items ...engine.Projected) {
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Print(spacing)
		}
		_, _ = f.Print(" none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	p := color.New(color.Faint, color.Italic)
	r := color.New(color.FgHiRed)

	for _, it := range items {
		if pp.ShowID {
			_, _ = y.Print(it.ID)
			_, _ = y.Print(strings.Repeat(" ", max(1, len(spacing)-len(it.ID))))
		}
		_, _ = t.Printf("%s - %s ", it.Text, it.Author)
		if it.Pending {
			_, _ = p.Print("sending...")
		} else {
			_, _ = p.Print(it.AgeDisplay)
		}
		if it.Failed != "" {
			_, _ = r.Printf("  !%s", it.Failed)
		}
		fmt.Println("")
	}
	_, _ = t.Println("")
}

// Table renders the view as an aligned table, one row per request.
func (pp *PrettyPrint) Table(v engine.View) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if pp.ShowID {
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Request"), bold.Sprint("Name"), bold.Sprint("Age"), bold.Sprint("Status"))
	} else {
		tbl.AddRow(bold.Sprint("Request"), bold.Sprint("Name"), bold.Sprint("Age"), bold.Sprint("Status"))
	}
	for _, it := range v.Items {
		status := "confirmed"
		if it.Pending {
			status = "sending"
		}
		if it.Failed != "" {
			status = it.Failed
		}
		if pp.ShowID {
			tbl.AddRow(it.ID, it.Text, it.Author, it.AgeDisplay, status)
		} else {
			tbl.AddRow(it.Text, it.Author, it.AgeDisplay, status)
		}
	}

	_, _ = fmt.Fprintln(color.Output, tbl)
}
