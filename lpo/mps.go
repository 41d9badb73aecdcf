package lpo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// objRowName is the name of the objective row in MPS output.
const objRowName = "obj"

// WriteMps writes the model in free MPS format. Integer columns are wrapped in
// MARKER lines, binaries get a BV bound, and an OBJSENSE section is written
// when the model maximizes.
// In case of failure, function returns an error.
func WriteMps(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)

	objCoef := make(map[int]float64, len(m.Obj))
	for _, t := range m.Obj {
		objCoef[t.Col] = t.Coef
	}

	fmt.Fprintf(bw, "NAME          %s\n", mpsName(m.Name))
	if m.Maximize {
		fmt.Fprintf(bw, "OBJSENSE\n    MAX\n")
	}

	fmt.Fprintf(bw, "ROWS\n")
	fmt.Fprintf(bw, " N  %s\n", objRowName)
	for i := range m.Rows {
		fmt.Fprintf(bw, " %s  %s\n", m.Rows[i].Type, m.Rows[i].Name)
	}

	// Columns are written in model order. Consecutive integer columns share
	// one marker block.
	fmt.Fprintf(bw, "COLUMNS\n")
	inInt := false
	marker := 0
	for j := range m.Cols {
		col := m.Cols[j]
		if col.Type == ColInt && !inInt {
			fmt.Fprintf(bw, "    MARKER%d  'MARKER'  'INTORG'\n", marker)
			inInt = true
		} else if col.Type != ColInt && inInt {
			fmt.Fprintf(bw, "    MARKER%d  'MARKER'  'INTEND'\n", marker)
			inInt = false
			marker++
		}

		if c, ok := objCoef[j]; ok {
			fmt.Fprintf(bw, "    %s  %s  %.15g\n", col.Name, objRowName, c)
		} else if len(col.HasElems) == 0 {
			// Keep the column visible to the reader.
			fmt.Fprintf(bw, "    %s  %s  0\n", col.Name, objRowName)
		}
		for _, e := range col.HasElems {
			fmt.Fprintf(bw, "    %s  %s  %.15g\n", col.Name, m.Rows[m.Elems[e].InRow].Name, m.Elems[e].Value)
		}
	}
	if inInt {
		fmt.Fprintf(bw, "    MARKER%d  'MARKER'  'INTEND'\n", marker)
	}

	fmt.Fprintf(bw, "RHS\n")
	if m.ObjConst != 0 {
		// MPS stores the negated objective constant as the RHS of the objective row.
		fmt.Fprintf(bw, "    RHS  %s  %.15g\n", objRowName, -m.ObjConst)
	}
	for i := range m.Rows {
		if m.Rows[i].Rhs != 0 {
			fmt.Fprintf(bw, "    RHS  %s  %.15g\n", m.Rows[i].Name, m.Rows[i].Rhs)
		}
	}

	fmt.Fprintf(bw, "BOUNDS\n")
	for j := range m.Cols {
		writeBounds(bw, m.Cols[j])
	}

	fmt.Fprintf(bw, "ENDATA\n")

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "WriteMps failed to flush output")
	}
	return nil
}

// WriteMpsFile writes the model to the named file in free MPS format,
// overwriting the file if it exists.
// In case of failure, function returns an error.
func WriteMpsFile(fileName string, m *Model) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create new file %s", fileName)
	}

	startTime := time.Now()
	if err = WriteMps(f, m); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write MPS file %s", fileName)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close MPS file %s", fileName)
	}

	log().Debug("wrote MPS file", "file", fileName, "rows", len(m.Rows),
		"cols", len(m.Cols), "elapsed", time.Since(startTime))
	return nil
}

func writeBounds(w io.Writer, col InputCol) {
	lo, up := col.BndLo, col.BndUp

	if col.Type == ColInt && lo == 0 && up == 1 {
		fmt.Fprintf(w, " BV BND  %s\n", col.Name)
		return
	}

	switch {
	case lo <= -Plinfy && up >= Plinfy:
		fmt.Fprintf(w, " FR BND  %s\n", col.Name)
		return
	case lo == up:
		fmt.Fprintf(w, " FX BND  %s  %.15g\n", col.Name, lo)
		return
	case lo <= -Plinfy:
		fmt.Fprintf(w, " MI BND  %s\n", col.Name)
	case lo != 0:
		fmt.Fprintf(w, " LO BND  %s  %.15g\n", col.Name, lo)
	}

	if up < Plinfy {
		fmt.Fprintf(w, " UP BND  %s  %.15g\n", col.Name, up)
	} else if col.Type == ColInt {
		// Some readers default integer columns to an upper bound of 1.
		fmt.Fprintf(w, " PL BND  %s\n", col.Name)
	}
}

func mpsName(name string) string {
	if name == "" {
		return "model"
	}
	return name
}
