package apkg

// schemaVersion is the collection schema the package is written in
const schemaVersion = 11

const collectionSchema = `
CREATE TABLE col (
	id     integer primary key,
	crt    integer not null,
	mod    integer not null,
	scm    integer not null,
	ver    integer not null,
	dty    integer not null,
	usn    integer not null,
	ls     integer not null,
	conf   text not null,
	models text not null,
	decks  text not null,
	dconf  text not null,
	tags   text not null
);
CREATE TABLE notes (
	id    integer primary key,
	guid  text not null,
	mid   integer not null,
	mod   integer not null,
	usn   integer not null,
	tags  text not null,
	flds  text not null,
	sfld  integer not null,
	csum  integer not null,
	flags integer not null,
	data  text not null
);
CREATE TABLE cards (
	id     integer primary key,
	nid    integer not null,
	did    integer not null,
	ord    integer not null,
	mod    integer not null,
	usn    integer not null,
	type   integer not null,
	queue  integer not null,
	due    integer not null,
	ivl    integer not null,
	factor integer not null,
	reps   integer not null,
	lapses integer not null,
	left   integer not null,
	odue   integer not null,
	odid   integer not null,
	flags  integer not null,
	data   text not null
);
CREATE TABLE revlog (
	id      integer primary key,
	cid     integer not null,
	usn     integer not null,
	ease    integer not null,
	ivl     integer not null,
	lastIvl integer not null,
	factor  integer not null,
	time    integer not null,
	type    integer not null
);
CREATE TABLE graves (
	usn  integer not null,
	oid  integer not null,
	type integer not null
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);
`

// fieldSeparator joins note fields in notes.flds
const fieldSeparator = "\x1f"

// defaultDeckID is the collection's built-in "Default" deck
const defaultDeckID int64 = 1

const latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n" +
	"\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"

const latexPost = "\\end{document}"

// Collection JSON blobs stored in the col row

type collectionConf struct {
	ActiveDecks   []int64 `json:"activeDecks"`
	AddToCur      bool    `json:"addToCur"`
	CollapseTime  int     `json:"collapseTime"`
	CurDeck       int64   `json:"curDeck"`
	CurModel      string  `json:"curModel"`
	DueCounts     bool    `json:"dueCounts"`
	EstTimes      bool    `json:"estTimes"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	NextPos       int     `json:"nextPos"`
	SortBackwards bool    `json:"sortBackwards"`
	SortType      string  `json:"sortType"`
	TimeLim       int     `json:"timeLim"`
}

type deckJSON struct {
	Collapsed bool   `json:"collapsed"`
	Conf      int64  `json:"conf"`
	Desc      string `json:"desc"`
	Dyn       int    `json:"dyn"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
	ID        int64  `json:"id"`
	LrnToday  [2]int `json:"lrnToday"`
	Mod       int64  `json:"mod"`
	Name      string `json:"name"`
	NewToday  [2]int `json:"newToday"`
	RevToday  [2]int `json:"revToday"`
	TimeToday [2]int `json:"timeToday"`
	Usn       int    `json:"usn"`
}

type fieldJSON struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Font   string   `json:"font"`
	Media  []string `json:"media"`
	RTL    bool     `json:"rtl"`
	Size   int      `json:"size"`
	Sticky bool     `json:"sticky"`
}

type templateJSON struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
	DID   *int64 `json:"did"`
}

type modelJSON struct {
	CSS       string         `json:"css"`
	DID       int64          `json:"did"`
	Flds      []fieldJSON    `json:"flds"`
	ID        string         `json:"id"`
	LatexPost string         `json:"latexPost"`
	LatexPre  string         `json:"latexPre"`
	LatexSVG  bool           `json:"latexsvg"`
	Mod       int64          `json:"mod"`
	Name      string         `json:"name"`
	Req       [][]any        `json:"req"`
	Sortf     int            `json:"sortf"`
	Tags      []string       `json:"tags"`
	Tmpls     []templateJSON `json:"tmpls"`
	Type      int            `json:"type"`
	Usn       int            `json:"usn"`
	Vers      []any          `json:"vers"`
}

type lapseConf struct {
	Delays      []int   `json:"delays"`
	LeechAction int     `json:"leechAction"`
	LeechFails  int     `json:"leechFails"`
	MinInt      int     `json:"minInt"`
	Mult        float64 `json:"mult"`
}

type newConf struct {
	Bury          bool  `json:"bury"`
	Delays        []int `json:"delays"`
	InitialFactor int   `json:"initialFactor"`
	Ints          []int `json:"ints"`
	Order         int   `json:"order"`
	PerDay        int   `json:"perDay"`
	Separate      bool  `json:"separate"`
}

type revConf struct {
	Bury     bool    `json:"bury"`
	Ease4    float64 `json:"ease4"`
	Fuzz     float64 `json:"fuzz"`
	IvlFct   float64 `json:"ivlFct"`
	MaxIvl   int     `json:"maxIvl"`
	MinSpace int     `json:"minSpace"`
	PerDay   int     `json:"perDay"`
}

type deckConf struct {
	Autoplay bool      `json:"autoplay"`
	ID       int64     `json:"id"`
	Lapse    lapseConf `json:"lapse"`
	MaxTaken int       `json:"maxTaken"`
	Mod      int64     `json:"mod"`
	Name     string    `json:"name"`
	New      newConf   `json:"new"`
	ReplayQ  bool      `json:"replayq"`
	Rev      revConf   `json:"rev"`
	Timer    int       `json:"timer"`
	Usn      int       `json:"usn"`
}

func defaultDeckConf() deckConf {
	return deckConf{
		Autoplay: true,
		ID:       1,
		Lapse:    lapseConf{Delays: []int{10}, LeechAction: 0, LeechFails: 8, MinInt: 1, Mult: 0},
		MaxTaken: 60,
		Name:     "Default",
		New: newConf{
			Bury:          true,
			Delays:        []int{1, 10},
			InitialFactor: 2500,
			Ints:          []int{1, 4, 7},
			Order:         1,
			PerDay:        20,
			Separate:      true,
		},
		ReplayQ: true,
		Rev: revConf{
			Bury:     true,
			Ease4:    1.3,
			Fuzz:     0.05,
			IvlFct:   1,
			MaxIvl:   36500,
			MinSpace: 1,
			PerDay:   100,
		},
	}
}
