package rcs

import (
	"fmt"
	"time"
)

// adminKeywords are the field keywords that can appear in the admin block,
// in the order real RCS writes them. Parsing tolerates any subset and, for
// robustness against hand-edited ,v files, any order.
var adminKeywords = map[string]bool{
	"head":    true,
	"branch":  true,
	"access":  true,
	"symbols": true,
	"locks":   true,
	"strict":  true,
	"comment": true,
	"expand":  true,
}

var deltaKeywords = map[string]bool{
	"date":     true,
	"author":   true,
	"state":    true,
	"branches": true,
	"next":     true,
	"commitid": true,
}

// Parse decodes the contents of a single ,v file. path is recorded on the
// returned File and on any ParseError for diagnostics; it need not be a
// real filesystem path.
func Parse(path string, buf []byte) (*File, error) {
	s := newScanner(buf)
	f := &File{
		Path:      path,
		Deltas:    make(map[string]Delta),
		DeltaText: make(map[string]DeltaText),
	}

	admin, err := parseAdmin(s)
	if err != nil {
		return nil, &ParseError{Path: path, Offset: s.pos, Cause: err}
	}
	f.Admin = admin

	for {
		tok, terr := s.peekToken()
		if terr != nil {
			return nil, &ParseError{Path: path, Offset: s.pos, Cause: terr}
		}
		if tok == "desc" {
			break
		}
		d, err := parseDelta(s)
		if err != nil {
			return nil, &ParseError{Path: path, Offset: s.pos, Cause: err}
		}
		f.Deltas[d.Revision.String()] = d
	}

	if err := s.expectKeyword("desc"); err != nil {
		return nil, &ParseError{Path: path, Offset: s.pos, Cause: err}
	}
	desc, err := s.atom()
	if err != nil {
		return nil, &ParseError{Path: path, Offset: s.pos, Cause: fmt.Errorf("desc: %w", err)}
	}
	f.Desc = string(desc)

	for !s.eof() {
		s.skipSpace()
		if s.eof() {
			break
		}
		dt, rev, err := parseDeltaText(s)
		if err != nil {
			return nil, &ParseError{Path: path, Offset: s.pos, Cause: err}
		}
		f.DeltaText[rev.String()] = dt
	}

	if f.Admin.Head.IsZero() && len(f.Deltas) > 0 {
		return nil, &ParseError{Path: path, Offset: 0, Cause: fmt.Errorf("missing required admin field: head")}
	}

	return f, nil
}

func parseAdmin(s *scanner) (Admin, error) {
	admin := Admin{
		Symbols: make(map[string]Revision),
		Locks:   make(map[string]Revision),
	}
	for {
		tok, err := s.peekToken()
		if err != nil {
			return admin, err
		}
		if !adminKeywords[tok] {
			return admin, nil
		}
		s.expectKeyword(tok)
		switch tok {
		case "head":
			rev, err := parseOptionalRevision(s)
			if err != nil {
				return admin, fmt.Errorf("head: %w", err)
			}
			admin.Head = rev
		case "branch":
			rev, err := parseOptionalRevision(s)
			if err != nil {
				return admin, fmt.Errorf("branch: %w", err)
			}
			admin.Branch = rev
		case "access":
			ids, err := parseIDList(s)
			if err != nil {
				return admin, fmt.Errorf("access: %w", err)
			}
			admin.Access = ids
		case "symbols":
			pairs, err := parseSymbolPairs(s)
			if err != nil {
				return admin, fmt.Errorf("symbols: %w", err)
			}
			admin.Symbols = pairs
		case "locks":
			pairs, err := parseSymbolPairs(s)
			if err != nil {
				return admin, fmt.Errorf("locks: %w", err)
			}
			admin.Locks = pairs
			// "strict" sometimes appears inline within locks' terminator in
			// older RCS files; the common case is a separate "strict;" field,
			// handled by the loop on its next iteration.
		case "strict":
			admin.Strict = true
		case "comment":
			c, err := s.atom()
			if err != nil {
				return admin, fmt.Errorf("comment: %w", err)
			}
			admin.Comment = string(c)
		case "expand":
			e, err := s.atom()
			if err != nil {
				return admin, fmt.Errorf("expand: %w", err)
			}
			admin.Expand = string(e)
		}
		if err := s.semicolon(); err != nil {
			return admin, fmt.Errorf("%s: %w", tok, err)
		}
	}
}

func parseOptionalRevision(s *scanner) (Revision, error) {
	t, err := parseOptionalToken(s)
	if err != nil || t == "" {
		return Revision{}, err
	}
	return ParseRevision(t)
}

func parseIDList(s *scanner) ([]string, error) {
	var out []string
	for {
		save := s.pos
		s.skipSpace()
		if !s.eof() && s.buf[s.pos] == ';' {
			s.pos = save
			return out, nil
		}
		s.pos = save
		tok, err := s.token()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

func parseSymbolPairs(s *scanner) (map[string]Revision, error) {
	out := make(map[string]Revision)
	for {
		save := s.pos
		s.skipSpace()
		if !s.eof() && s.buf[s.pos] == ';' {
			s.pos = save
			return out, nil
		}
		s.pos = save
		name, err := s.token()
		if err != nil {
			return out, err
		}
		if err := s.colon(); err != nil {
			return out, fmt.Errorf("symbol %q: %w", name, err)
		}
		revTok, err := s.token()
		if err != nil {
			return out, fmt.Errorf("symbol %q: %w", name, err)
		}
		rev, err := ParseRevision(revTok)
		if err != nil {
			return out, fmt.Errorf("symbol %q: %w", name, err)
		}
		out[name] = rev
	}
}

func parseDelta(s *scanner) (Delta, error) {
	revTok, err := s.token()
	if err != nil {
		return Delta{}, err
	}
	rev, err := ParseRevision(revTok)
	if err != nil {
		return Delta{}, err
	}
	d := Delta{Revision: rev}

	for {
		tok, err := s.peekToken()
		if err != nil {
			return d, err
		}
		if !deltaKeywords[tok] {
			return d, nil
		}
		s.expectKeyword(tok)
		switch tok {
		case "date":
			dateTok, err := s.token()
			if err != nil {
				return d, fmt.Errorf("%s: date: %w", rev, err)
			}
			ts, err := parseRCSDate(dateTok)
			if err != nil {
				return d, fmt.Errorf("%s: date: %w", rev, err)
			}
			d.Date = ts
		case "author":
			a, err := s.token()
			if err != nil {
				return d, fmt.Errorf("%s: author: %w", rev, err)
			}
			d.Author = a
		case "state":
			st, err := parseOptionalToken(s)
			if err != nil {
				return d, fmt.Errorf("%s: state: %w", rev, err)
			}
			d.State = st
		case "branches":
			branches, err := parseRevisionList(s)
			if err != nil {
				return d, fmt.Errorf("%s: branches: %w", rev, err)
			}
			d.Branches = branches
		case "next":
			next, err := parseOptionalRevision(s)
			if err != nil {
				return d, fmt.Errorf("%s: next: %w", rev, err)
			}
			d.Next = next
		case "commitid":
			// Recorded by modern CVS/RCS for cross-file grouping hints; this
			// importer derives its own patchset grouping and does not need it.
			if _, err := parseOptionalToken(s); err != nil {
				return d, fmt.Errorf("%s: commitid: %w", rev, err)
			}
		}
		if err := s.semicolon(); err != nil {
			return d, fmt.Errorf("%s: %s: %w", rev, tok, err)
		}
	}
}

func parseOptionalToken(s *scanner) (string, error) {
	save := s.pos
	s.skipSpace()
	if !s.eof() && s.buf[s.pos] == ';' {
		s.pos = save
		return "", nil
	}
	s.pos = save
	return s.token()
}

func parseRevisionList(s *scanner) ([]Revision, error) {
	var out []Revision
	for {
		save := s.pos
		s.skipSpace()
		if !s.eof() && s.buf[s.pos] == ';' {
			s.pos = save
			return out, nil
		}
		s.pos = save
		tok, err := s.token()
		if err != nil {
			return out, err
		}
		rev, err := ParseRevision(tok)
		if err != nil {
			return out, err
		}
		out = append(out, rev)
	}
}

func parseDeltaText(s *scanner) (DeltaText, Revision, error) {
	revTok, err := s.token()
	if err != nil {
		return DeltaText{}, Revision{}, err
	}
	rev, err := ParseRevision(revTok)
	if err != nil {
		return DeltaText{}, Revision{}, err
	}
	if err := s.expectKeyword("log"); err != nil {
		return DeltaText{}, rev, fmt.Errorf("%s: %w", rev, err)
	}
	logMsg, err := s.atom()
	if err != nil {
		return DeltaText{}, rev, fmt.Errorf("%s: log: %w", rev, err)
	}
	// Real RCS files sometimes insert a "text" field tag directly, but
	// newer ones insert an intervening newline only; no other tokens are
	// valid here other than "text".
	if err := s.expectKeyword("text"); err != nil {
		return DeltaText{}, rev, fmt.Errorf("%s: %w", rev, err)
	}
	text, err := s.atom()
	if err != nil {
		return DeltaText{}, rev, fmt.Errorf("%s: text: %w", rev, err)
	}
	return DeltaText{Log: string(logMsg), Text: text}, rev, nil
}

// parseRCSDate parses RCS's "YY.MM.DD.hh.mm.ss" timestamp, always stored in
// UTC. Per CVS convention, a two-digit year (< 100) is pre-Y2K and gets 1900
// added; a four-digit year is taken literally.
func parseRCSDate(s string) (time.Time, error) {
	var y, mo, d, h, mi, sec int
	n, err := fmt.Sscanf(s, "%d.%d.%d.%d.%d.%d", &y, &mo, &d, &h, &mi, &sec)
	if err != nil || n != 6 {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if y < 100 {
		y += 1900
	}
	return time.Date(y, time.Month(mo), d, h, mi, sec, 0, time.UTC), nil
}
