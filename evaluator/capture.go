package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/steelseries/golisp"

	"lispdoc/builtin"
)

// captureBuffer is an in-memory sink collecting printed output during a
// fragment's evaluation.
type captureBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (o *captureBuffer) Write(data []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(data)
}

func (o *captureBuffer) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func (o *captureBuffer) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.Reset()
}

// active holds the capture sink and builtin registry for the fragment
// currently being evaluated. The interpreter's printing primitives are
// process-wide, so exactly one fragment may hold the sink at a time.
var active struct {
	mu  sync.Mutex
	ctx context.Context
	out io.Writer
	reg *builtin.Registry
}

// beginFragment claims the capture sink for one fragment's evaluation.
// The returned release func must run on every exit path, including raised
// errors and recovered panics.
func beginFragment(ctx context.Context, out io.Writer, reg *builtin.Registry) (release func()) {
	active.mu.Lock()
	active.ctx = ctx
	active.out = out
	active.reg = reg
	return func() {
		active.ctx = nil
		active.out = nil
		active.reg = nil
		active.mu.Unlock()
	}
}

func emit(s string) {
	if active.out != nil {
		io.WriteString(active.out, s)
	}
}

var installOnce sync.Once

// installPrimitives rebinds the printing primitives to write to the
// capture sink instead of process stdout, and installs call-go.
func installPrimitives() {
	installOnce.Do(func() {
		golisp.MakePrimitiveFunction("display", "1", displayImpl)
		golisp.MakePrimitiveFunction("write-string", "1", displayImpl)
		golisp.MakePrimitiveFunction("write", "1", writeImpl)
		golisp.MakePrimitiveFunction("newline", "0", newlineImpl)
		golisp.MakePrimitiveFunction("print", "*", printImpl)
		golisp.MakePrimitiveFunction("call-go", ">=1", callGoImpl)
	})
}

func displayImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	emit(displayString(golisp.Car(args)))
	return nil, nil
}

func writeImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	emit(golisp.String(golisp.Car(args)))
	return nil, nil
}

func newlineImpl(_ *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	emit("\n")
	return nil, nil
}

func printImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	for i, d := range golisp.ToArray(args) {
		if i > 0 {
			emit(" ")
		}
		emit(displayString(d))
	}
	emit("\n")
	return nil, nil
}

// displayString prints strings without quotes, everything else in its
// written representation.
func displayString(d *golisp.Data) string {
	if golisp.StringP(d) {
		return golisp.StringValue(d)
	}
	return golisp.String(d)
}

func callGoImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	name := golisp.Car(args)
	if !golisp.StringP(name) && !golisp.SymbolP(name) {
		return nil, fmt.Errorf("call-go: function name expected, received %s", golisp.String(name))
	}
	if active.reg == nil {
		return nil, errors.New("call-go: no builtin registry in scope")
	}
	fn, ok := active.reg.Get(golisp.StringValue(name))
	if !ok {
		return nil, fmt.Errorf("call-go: unknown function: %s", golisp.StringValue(name))
	}
	return fn(active.ctx, golisp.ToArray(golisp.Cdr(args)))
}
