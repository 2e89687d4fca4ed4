// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"code.hybscloud.com/kont"
)

// Transcript holds the lines returned by ReadLine effects, in order,
// without terminators.
type Transcript []string

// Program lowers seq into a Cont-world computation.
//
// Draining is lazy: effect N+1 is taken from seq only after effect N has
// been resumed, so a failed effect leaves every later effect in seq.
// Building the program takes the first effect.
func Program(seq *Sequence) kont.Eff[Transcript] {
	return drain(seq, nil)
}

// ProgramExpr lowers seq into an Expr-world computation for [Step].
func ProgramExpr(seq *Sequence) kont.Expr[Transcript] {
	return kont.Reify(Program(seq))
}

func drain(seq *Sequence, acc Transcript) kont.Eff[Transcript] {
	e, ok := seq.Next()
	if !ok {
		return kont.Pure(acc)
	}
	if e.Kind() == KindReadLine {
		return kont.Bind(perform(e), func(line string) kont.Eff[Transcript] {
			return drain(seq, append(acc[:len(acc):len(acc)], line))
		})
	}
	return kont.Bind(perform(e), func(string) kont.Eff[Transcript] {
		return drain(seq, acc)
	})
}

// perform lifts e into its kont operation.
func perform(e Effect) kont.Eff[string] {
	switch op := e.(type) {
	case Connect:
		return kont.Perform(op)
	case Upgrade:
		return kont.Perform(op)
	case DiscardLine:
		return kont.Perform(op)
	case ReadLine:
		return kont.Perform(op)
	case WriteLine:
		return kont.Perform(op)
	case Disconnect:
		return kont.Perform(op)
	}
	panic("starttls: unknown effect " + e.String())
}
