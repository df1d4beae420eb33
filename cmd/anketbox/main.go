package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/soaringjerry/AnketBox/internal/config"
	"github.com/soaringjerry/AnketBox/internal/models"
	"github.com/soaringjerry/AnketBox/internal/services"
	"github.com/soaringjerry/AnketBox/internal/storage"
	"github.com/soaringjerry/AnketBox/internal/utils"
)

const usage = `usage: anketbox [-config file] <command> [flags]

design commands:
  add      -text T [-type short_text] [-options "A,B"] [-required]
  list
  update   -index N -field F -value V
  remove   -index N [-yes]
  move     -from N -to N
  save     -title T [-description D]
  export   [-out file]
  import   -in file
  clear    [-yes]

response commands:
  respond         [-name NAME] [-draft] -a key=value [-a key=value ...]
  responses       [-drafts]
  csv             [-out file]
  stats
  clear-responses [-yes]
`

type app struct {
	cfg       *config.Config
	gateway   *storage.SQLiteGateway
	builder   *services.BuilderService
	collector *services.CollectorService
	responses *services.ResponseStore
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("anketbox", flag.ExitOnError)
	configPath := fs.String("config", utils.SafeEnv("ANKETBOX_CONFIG", ""), "path to YAML config")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.LogPath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    10, // MB
			MaxBackups: 3,
		}))
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}

	gateway, err := storage.Open(cfg.DataPath)
	if err != nil {
		log.Fatalf("open store %s: %v", cfg.DataPath, err)
	}
	defer gateway.Close()

	a := &app{
		cfg:       cfg,
		gateway:   gateway,
		builder:   services.NewBuilderService(gateway),
		collector: services.NewCollectorService(gateway),
		responses: services.NewResponseStore(gateway),
	}
	a.builder.Load()

	if err := a.run(args[0], args[1:]); err != nil {
		if se, ok := services.AsServiceError(err); ok {
			fmt.Fprintln(os.Stderr, "error:", se.Message)
			os.Exit(1)
		}
		log.Fatalf("%s: %v", args[0], err)
	}
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "add":
		return a.cmdAdd(args)
	case "list":
		return a.cmdList()
	case "update":
		return a.cmdUpdate(args)
	case "remove":
		return a.cmdRemove(args)
	case "move":
		return a.cmdMove(args)
	case "save":
		return a.cmdSave(args)
	case "export":
		return a.cmdExport(args)
	case "import":
		return a.cmdImport(args)
	case "clear":
		return a.cmdClear(args)
	case "respond":
		return a.cmdRespond(args)
	case "responses":
		return a.cmdResponses(args)
	case "csv":
		return a.cmdCSV(args)
	case "stats":
		return a.cmdStats()
	case "clear-responses":
		return a.cmdClearResponses(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) notify(key string) {
	fmt.Println(utils.T(a.cfg.Locale, key))
}

func (a *app) cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	text := fs.String("text", "", "question text")
	typeName := fs.String("type", string(models.ShortText), "question type")
	options := fs.String("options", "", "comma-separated choice options")
	required := fs.Bool("required", false, "answer is mandatory")
	_ = fs.Parse(args)

	q, err := a.builder.AddQuestion(*text, *typeName, *options, *required)
	if err != nil {
		return err
	}
	a.notify("question.added")
	fmt.Printf("  [%s] %s (%s)\n", q.ID, q.Text, q.Type)
	return nil
}

func (a *app) cmdList() error {
	for i, q := range a.builder.Questions() {
		req := ""
		if q.Required {
			req = " *"
		}
		fmt.Printf("%2d. [%s] %s (%s)%s\n", i, q.ID, q.Text, q.Type, req)
		if len(q.Options) > 0 {
			fmt.Printf("      options: %s\n", strings.Join(q.Options, ", "))
		}
	}
	return nil
}

func (a *app) cmdUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	index := fs.Int("index", -1, "question index")
	field := fs.String("field", "", "field to change")
	value := fs.String("value", "", "new value")
	_ = fs.Parse(args)
	return a.builder.UpdateQuestion(*index, *field, *value)
}

func (a *app) cmdRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	index := fs.Int("index", -1, "question index")
	yes := fs.Bool("yes", false, "skip confirmation")
	_ = fs.Parse(args)
	if !*yes && !confirm("remove this question?") {
		return nil
	}
	if err := a.builder.RemoveQuestion(*index); err != nil {
		return err
	}
	a.notify("question.removed")
	return nil
}

func (a *app) cmdMove(args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	from := fs.Int("from", -1, "current index")
	to := fs.Int("to", -1, "target index")
	_ = fs.Parse(args)
	return a.builder.MoveQuestion(*from, *to)
}

func (a *app) cmdSave(args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	title := fs.String("title", a.builder.Title(), "survey title")
	description := fs.String("description", a.builder.Description(), "survey description")
	_ = fs.Parse(args)
	if _, err := a.builder.Commit(*title, *description); err != nil {
		return err
	}
	a.notify("survey.saved")
	return nil
}

func (a *app) cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)
	b, err := a.builder.ExportJSON()
	if err != nil {
		return err
	}
	if err := writeOut(*out, b); err != nil {
		return err
	}
	a.notify("survey.exported")
	return nil
}

func (a *app) cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "survey JSON file")
	_ = fs.Parse(args)
	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	if _, err := a.builder.ImportJSON(data); err != nil {
		return err
	}
	a.notify("survey.imported")
	return nil
}

func (a *app) cmdClear(args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	_ = fs.Parse(args)
	if !*yes && !confirm("delete the whole survey design?") {
		return nil
	}
	if err := a.builder.Clear(); err != nil {
		return err
	}
	a.notify("survey.cleared")
	return nil
}

func (a *app) cmdRespond(args []string) error {
	fs := flag.NewFlagSet("respond", flag.ExitOnError)
	name := fs.String("name", "", "respondent name")
	draft := fs.Bool("draft", false, "save as draft instead of submitting")
	var answers answerFlags
	fs.Var(&answers, "a", "answer as key=value; repeat for multi-choice")
	_ = fs.Parse(args)

	survey := a.builder.Committed()
	a.collector.Start()
	raw := answers.fields()

	if *draft {
		if _, err := a.collector.SaveDraft(survey, raw, *name); err != nil {
			return err
		}
		a.notify("draft.saved")
		return nil
	}
	if _, err := a.collector.Submit(survey, raw, *name); err != nil {
		return err
	}
	a.notify("response.saved")
	return nil
}

func (a *app) cmdResponses(args []string) error {
	fs := flag.NewFlagSet("responses", flag.ExitOnError)
	drafts := fs.Bool("drafts", false, "list drafts instead of submissions")
	_ = fs.Parse(args)

	survey := a.builder.Committed()
	list := a.responses.All()
	if *drafts {
		list = a.responses.DraftsOnly()
	}
	for _, r := range list {
		fmt.Printf("%s  %s\n", r.ID, r.RespondentName)
		if survey == nil {
			continue
		}
		for i, q := range survey.Questions {
			if ans, ok := services.AnswerFor(r, q, i); ok {
				fmt.Printf("    %s: %s\n", q.Text, ans.Flat())
			}
		}
	}
	return nil
}

func (a *app) cmdCSV(args []string) error {
	fs := flag.NewFlagSet("csv", flag.ExitOnError)
	out := fs.String("out", "", "output file (default derived from title)")
	_ = fs.Parse(args)

	survey := a.builder.Committed()
	b, err := services.ExportResponsesCSV(survey, a.responses.All())
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = services.CSVFilename(survey.Title)
	}
	return os.WriteFile(path, b, 0o644)
}

func (a *app) cmdStats() error {
	st := a.responses.Stats(a.builder.Committed())
	fmt.Printf("completed responses: %d\n", st.TotalCompleted)
	fmt.Printf("avg completion time: %.0fs\n", st.AvgCompletionSeconds)
	fmt.Printf("drop-off rate:       %d%%\n", st.DropoffRatePercent)
	fmt.Printf("avg rating:          %.1f\n", st.AvgRating)
	return nil
}

func (a *app) cmdClearResponses(args []string) error {
	fs := flag.NewFlagSet("clear-responses", flag.ExitOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	_ = fs.Parse(args)
	if !*yes && !confirm("delete all responses?") {
		return nil
	}
	if err := a.responses.ClearResponses(); err != nil {
		return err
	}
	a.notify("responses.clear")
	return nil
}

// answerFlags collects repeated -a key=value pairs into raw form fields.
// A bare numeric key is shorthand for the positional field name.
type answerFlags struct {
	raw services.RawFields
}

func (f *answerFlags) String() string { return "" }

func (f *answerFlags) Set(v string) error {
	key, val, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("answer must be key=value, got %q", v)
	}
	if f.raw == nil {
		f.raw = services.RawFields{}
	}
	if idx, err := parseIndex(key); err == nil {
		key = services.PositionKey(idx)
	}
	f.raw[key] = append(f.raw[key], val)
	return nil
}

func (f *answerFlags) fields() services.RawFields {
	if f.raw == nil {
		return services.RawFields{}
	}
	return f.raw
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not an index")
	}
	return n, nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func writeOut(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
