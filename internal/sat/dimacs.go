package sat

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/go-air/gini/z"
)

// clauseRecorder collects the z.LitNull-terminated clauses the circuit
// emits.
type clauseRecorder struct {
	clauses [][]z.Lit
	current []z.Lit
}

func (r *clauseRecorder) Add(m z.Lit) {
	if m == z.LitNull {
		r.clauses = append(r.clauses, r.current)
		r.current = nil
		return
	}
	r.current = append(r.current, m)
}

// WriteDIMACS writes the CNF that Solve decides to w in DIMACS format,
// see https://logic.pdmi.ras.ru/~basolver/dimacs.html. Every
// constraint becomes a unit clause; comments map variable numbers to
// identifiers and unit clauses to the constraints they stand for.
func WriteDIMACS(w io.Writer, variables []Variable) error {
	litMap, err := newLitMapping(variables)
	if err != nil {
		return err
	}
	var rec clauseRecorder
	litMap.c.ToCnf(&rec)
	if err := litMap.Error(); err != nil {
		return err
	}

	units := make([]z.Lit, 0, len(litMap.constraints))
	for m := range litMap.constraints {
		units = append(units, m)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Dimacs() < units[j].Dimacs() })

	maxVar := 0
	for _, clause := range rec.clauses {
		for _, m := range clause {
			if v := abs(m.Dimacs()); v > maxVar {
				maxVar = v
			}
		}
	}
	for _, m := range units {
		if v := abs(m.Dimacs()); v > maxVar {
			maxVar = v
		}
	}

	out := bufio.NewWriter(w)
	for _, v := range litMap.inorder {
		fmt.Fprintf(out, "c %d %s\n", litMap.LitOf(v.Identifier()).Dimacs(), v.Identifier())
	}
	fmt.Fprintf(out, "p cnf %d %d\n", maxVar, len(rec.clauses)+len(units))
	for _, clause := range rec.clauses {
		for _, m := range clause {
			fmt.Fprintf(out, "%d ", m.Dimacs())
		}
		fmt.Fprintln(out, "0")
	}
	for _, m := range units {
		fmt.Fprintf(out, "c %s\n%d 0\n", litMap.constraints[m], m.Dimacs())
	}
	return out.Flush()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
