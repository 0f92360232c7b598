package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"docxcomments/internal/comments"
	"docxcomments/internal/config"
	"docxcomments/internal/doc"
	"docxcomments/internal/export"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: docxcomments <command> [flags]

commands:
  list          list all comments in a document
  threads       list comments grouped into threads
  add           add a comment to a paragraph
  reply         reply to an existing comment
  resolve       mark a comment resolved
  unresolve     reopen a resolved comment
  delete        delete one comment
  delete-thread delete a comment and its whole thread
  migrate       backfill comment metadata parts
  export        render comment threads as an HTML report
  people        list the document's people registry
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.Load()

	switch os.Args[1] {
	case "list":
		cmdList(os.Args[2:])
	case "threads":
		cmdThreads(os.Args[2:])
	case "add":
		cmdAdd(os.Args[2:], cfg)
	case "reply":
		cmdReply(os.Args[2:], cfg)
	case "resolve":
		cmdSetResolved(os.Args[2:], true)
	case "unresolve":
		cmdSetResolved(os.Args[2:], false)
	case "delete":
		cmdDelete(os.Args[2:], false)
	case "delete-thread":
		cmdDelete(os.Args[2:], true)
	case "migrate":
		cmdMigrate(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "people":
		cmdPeople(os.Args[2:])
	default:
		usage()
	}
}

// openManager loads the document and binds a manager to it.
func openManager(filename string) (*doc.Document, *comments.Manager) {
	d, err := doc.Open(filename)
	if err != nil {
		log.Fatalf("open %s: %v", filename, err)
	}
	m, err := comments.New(d)
	if err != nil {
		log.Fatalf("bind comment manager: %v", err)
	}
	return d, m
}

// resolveAuthor picks the signing identity: explicit flags first, then
// environment configuration, then the identity sources.
func resolveAuthor(m *comments.Manager, cfg config.Config, name, initials string) (comments.Person, string) {
	if name == "" {
		name = cfg.Author
	}
	if initials == "" {
		initials = cfg.Initials
	}
	if name != "" {
		return comments.Person{Author: name}, initials
	}
	person, resolved, err := m.DefaultAuthor(&comments.IdentityOptions{SourcePath: cfg.AuthorDoc})
	if err != nil {
		log.Fatalf("resolve author: %v", err)
	}
	if initials == "" {
		initials = resolved
	}
	return person, initials
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	file := fs.String("file", "", "document to read")
	fs.Parse(args)
	if *file == "" {
		log.Fatalf("list: -file is required")
	}
	_, m := openManager(*file)
	all, err := m.ListComments()
	if err != nil {
		log.Fatalf("list comments: %v", err)
	}
	for _, c := range all {
		state := "open"
		if c.Resolved {
			state = "resolved"
		}
		kind := "root"
		if c.IsReply() {
			kind = "reply"
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\t%s\n",
			c.CommentID, kind, state, c.Author, c.Timestamp.Format(time.RFC3339), c.Text)
	}
}

func cmdThreads(args []string) {
	fs := flag.NewFlagSet("threads", flag.ExitOnError)
	file := fs.String("file", "", "document to read")
	fs.Parse(args)
	if *file == "" {
		log.Fatalf("threads: -file is required")
	}
	_, m := openManager(*file)
	threads, err := m.CommentThreads()
	if err != nil {
		log.Fatalf("list threads: %v", err)
	}
	for _, t := range threads {
		state := "open"
		if t.Resolved() {
			state = "resolved"
		}
		fmt.Printf("%s [%s] %s: %s\n", t.Root.CommentID, state, t.Root.Author, t.Root.Text)
		for _, r := range t.Replies {
			fmt.Printf("  %s %s: %s\n", r.CommentID, r.Author, r.Text)
		}
	}
}

func cmdAdd(args []string, cfg config.Config) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	file := fs.String("file", "", "document to modify")
	para := fs.Int("para", 0, "paragraph index to anchor at")
	text := fs.String("text", "", "comment text")
	author := fs.String("author", "", "author name")
	initials := fs.String("initials", "", "author initials")
	fs.Parse(args)
	if *file == "" || *text == "" {
		log.Fatalf("add: -file and -text are required")
	}
	d, m := openManager(*file)
	paras := d.Paragraphs()
	if *para < 0 || *para >= len(paras) {
		log.Fatalf("add: paragraph %d out of range (document has %d)", *para, len(paras))
	}
	person, init := resolveAuthor(m, cfg, *author, *initials)
	id, err := m.AddComment(paras[*para], *text, person, &comments.AddOptions{Initials: init, EndRun: -1})
	if err != nil {
		log.Fatalf("add comment: %v", err)
	}
	if err := d.SaveFile(*file); err != nil {
		log.Fatalf("save %s: %v", *file, err)
	}
	fmt.Println(id)
}

func cmdReply(args []string, cfg config.Config) {
	fs := flag.NewFlagSet("reply", flag.ExitOnError)
	file := fs.String("file", "", "document to modify")
	parent := fs.String("to", "", "comment id to reply to")
	text := fs.String("text", "", "reply text")
	author := fs.String("author", "", "author name")
	initials := fs.String("initials", "", "author initials")
	fs.Parse(args)
	if *file == "" || *parent == "" || *text == "" {
		log.Fatalf("reply: -file, -to and -text are required")
	}
	d, m := openManager(*file)
	person, init := resolveAuthor(m, cfg, *author, *initials)
	id, err := m.ReplyToComment(*parent, *text, person, &comments.ReplyOptions{Initials: init})
	if err != nil {
		log.Fatalf("reply to %s: %v", *parent, err)
	}
	if err := d.SaveFile(*file); err != nil {
		log.Fatalf("save %s: %v", *file, err)
	}
	fmt.Println(id)
}

func cmdSetResolved(args []string, resolved bool) {
	name := "resolve"
	if !resolved {
		name = "unresolve"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	file := fs.String("file", "", "document to modify")
	id := fs.String("id", "", "comment id")
	fs.Parse(args)
	if *file == "" || *id == "" {
		log.Fatalf("%s: -file and -id are required", name)
	}
	d, m := openManager(*file)
	if err := m.SetCommentResolved(*id, resolved); err != nil {
		log.Fatalf("%s %s: %v", name, *id, err)
	}
	if err := d.SaveFile(*file); err != nil {
		log.Fatalf("save %s: %v", *file, err)
	}
}

func cmdDelete(args []string, wholeThread bool) {
	name := "delete"
	if wholeThread {
		name = "delete-thread"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	file := fs.String("file", "", "document to modify")
	id := fs.String("id", "", "comment id")
	fs.Parse(args)
	if *file == "" || *id == "" {
		log.Fatalf("%s: -file and -id are required", name)
	}
	d, m := openManager(*file)
	var err error
	if wholeThread {
		err = m.DeleteThread(*id)
	} else {
		err = m.DeleteComment(*id)
	}
	if err != nil {
		log.Fatalf("%s %s: %v", name, *id, err)
	}
	if err := d.SaveFile(*file); err != nil {
		log.Fatalf("save %s: %v", *file, err)
	}
}

func cmdMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	file := fs.String("file", "", "document to modify")
	fs.Parse(args)
	if *file == "" {
		log.Fatalf("migrate: -file is required")
	}
	d, m := openManager(*file)
	if err := m.MigrateCommentMetadata(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := d.SaveFile(*file); err != nil {
		log.Fatalf("save %s: %v", *file, err)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	file := fs.String("file", "", "document to read")
	out := fs.String("out", "", "output HTML file (default stdout)")
	title := fs.String("title", "", "report title (default the file name)")
	fs.Parse(args)
	if *file == "" {
		log.Fatalf("export: -file is required")
	}
	_, m := openManager(*file)
	threads, err := m.CommentThreads()
	if err != nil {
		log.Fatalf("list threads: %v", err)
	}
	if *title == "" {
		*title = *file
	}
	html, err := export.RenderHTML(export.FromThreads(*title, threads, time.Now().UTC()))
	if err != nil {
		log.Fatalf("render report: %v", err)
	}
	if *out == "" {
		fmt.Print(html)
		return
	}
	if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
}

func cmdPeople(args []string) {
	fs := flag.NewFlagSet("people", flag.ExitOnError)
	file := fs.String("file", "", "document to read")
	fs.Parse(args)
	if *file == "" {
		log.Fatalf("people: -file is required")
	}
	_, m := openManager(*file)
	people, err := m.People()
	if err != nil {
		log.Fatalf("list people: %v", err)
	}
	for _, p := range people {
		if p.HasPresence() {
			fmt.Printf("%s\t%s\t%s\n", p.Author, p.ProviderID, p.UserID)
		} else {
			fmt.Println(p.Author)
		}
	}
}
