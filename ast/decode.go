package ast

import (
	"errors"
	"fmt"
	"io"
	"keel/report"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes the YAML interchange form of a syntax tree as produced by
// the parser.  The document is a sequence of top level nodes: declarations
// (`using`, `record`, `sum`, `func`) and script statements.  Every node is a
// mapping whose `node` key names its kind and whose optional `span` key holds
// the zero-indexed `[startLine, startCol, endLine, endCol]` of the node.
func DecodeYAML(r io.Reader) ([]Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to parse syntax tree: %w", err)
	}

	d := &decoder{}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	if root.Kind != yaml.SequenceNode {
		return nil, d.errorf(root, "expected a sequence of top level nodes")
	}

	nodes := make([]Node, len(root.Content))
	for i, item := range root.Content {
		node, err := d.decodeTopLevel(item)
		if err != nil {
			return nil, err
		}

		nodes[i] = node
	}

	return nodes, nil
}

// decoder converts YAML nodes into syntax nodes.  Errors are propagated by
// panicking with a *decodeError which decodeTopLevel recovers.
type decoder struct{}

type decodeError struct {
	line, col int
	msg       string
}

func (de *decodeError) Error() string {
	return fmt.Sprintf("syntax tree %d:%d: %s", de.line, de.col, de.msg)
}

func (d *decoder) errorf(yn *yaml.Node, msg string, args ...interface{}) error {
	return &decodeError{line: yn.Line, col: yn.Column, msg: fmt.Sprintf(msg, args...)}
}

func (d *decoder) fail(yn *yaml.Node, msg string, args ...interface{}) {
	panic(d.errorf(yn, msg, args...))
}

func (d *decoder) decodeTopLevel(yn *yaml.Node) (node Node, err error) {
	defer func() {
		if x := recover(); x != nil {
			if derr, ok := x.(*decodeError); ok {
				err = derr
			} else {
				panic(x)
			}
		}
	}()

	fields := d.fields(yn)
	switch d.kind(yn, fields) {
	case "using":
		d.allow(yn, fields, "namespace")
		return &UsingDef{
			NodeBase:  NewNodeBaseOn(d.span(fields)),
			Namespace: d.str(yn, fields, "namespace"),
		}, nil
	case "record":
		return d.decodeRecord(yn, fields), nil
	case "sum":
		return d.decodeSumType(yn, fields), nil
	case "func":
		return d.decodeFunc(yn, fields), nil
	default:
		return d.decodeExpr(yn), nil
	}
}

// -----------------------------------------------------------------------------

func (d *decoder) decodeRecord(yn *yaml.Node, fields map[string]*yaml.Node) *RecordDef {
	d.allow(yn, fields, "name", "fields")
	span := d.span(fields)

	rd := &RecordDef{NodeBase: NewNodeBaseOn(span), TypeName: d.str(yn, fields, "name")}
	for _, fn := range d.seq(fields["fields"]) {
		ffields := d.fields(fn)
		d.allow(fn, ffields, "name", "type")
		fspan := d.spanOr(ffields, span)

		rd.Fields = append(rd.Fields, &RecordField{
			NodeBase: NewNodeBaseOn(fspan),
			Name:     d.str(fn, ffields, "name"),
			Type:     d.typeLabel(fn, ffields, "type", fspan),
		})
	}

	return rd
}

func (d *decoder) decodeSumType(yn *yaml.Node, fields map[string]*yaml.Node) *SumTypeDef {
	d.allow(yn, fields, "name", "labels")
	span := d.span(fields)

	sd := &SumTypeDef{NodeBase: NewNodeBaseOn(span), TypeName: d.str(yn, fields, "name")}
	for _, ln := range d.seq(fields["labels"]) {
		lfields := d.fields(ln)
		d.allow(ln, lfields, "name", "tag")
		lspan := d.spanOr(lfields, span)

		label := &SumLabel{NodeBase: NewNodeBaseOn(lspan), Name: d.str(ln, lfields, "name")}
		if _, ok := lfields["tag"]; ok {
			label.Tag = d.typeLabel(ln, lfields, "tag", lspan)
		}

		sd.Labels = append(sd.Labels, label)
	}

	return sd
}

func (d *decoder) decodeFunc(yn *yaml.Node, fields map[string]*yaml.Node) *FuncDef {
	d.allow(yn, fields, "name", "args", "returns", "body")
	span := d.span(fields)

	fd := &FuncDef{
		NodeBase: NewNodeBaseOn(span),
		FuncName: d.str(yn, fields, "name"),
		Args:     d.funcArgs(fields["args"], span),
		Body:     d.block(fields["body"], span),
	}

	if _, ok := fields["returns"]; ok {
		fd.ReturnType = d.typeLabel(yn, fields, "returns", span)
	}

	return fd
}

func (d *decoder) funcArgs(yn *yaml.Node, span *report.TextSpan) []*FuncArg {
	var args []*FuncArg
	for _, an := range d.seq(yn) {
		afields := d.fields(an)
		d.allow(an, afields, "name", "type", "ref")
		aspan := d.spanOr(afields, span)

		args = append(args, &FuncArg{
			NodeBase: NewNodeBaseOn(aspan),
			Name:     d.str(an, afields, "name"),
			Type:     d.typeLabel(an, afields, "type", aspan),
			ByRef:    d.boolean(afields, "ref"),
		})
	}

	return args
}

// -----------------------------------------------------------------------------

func (d *decoder) decodeExpr(yn *yaml.Node) Expr {
	fields := d.fields(yn)
	span := d.span(fields)
	eb := NewExprBase(span)

	switch kind := d.kind(yn, fields); kind {
	case "block":
		d.allow(yn, fields, "body")
		return d.block(fields["body"], span)
	case "let", "var":
		d.allow(yn, fields, "name", "type", "value")
		vd := &VarDef{
			ExprBase:  eb,
			Name:      d.str(yn, fields, "name"),
			Value:     d.expr(yn, fields, "value"),
			Immutable: kind == "let",
		}

		if _, ok := fields["type"]; ok {
			vd.Type = d.typeLabel(yn, fields, "type", span)
		}

		return vd
	case "assign":
		d.allow(yn, fields, "name", "value")
		return &Assign{ExprBase: eb, Name: d.str(yn, fields, "name"), Value: d.expr(yn, fields, "value")}
	case "ident":
		d.allow(yn, fields, "name")
		return &Identifier{ExprBase: eb, Name: d.str(yn, fields, "name")}
	case "int", "float", "string", "bool":
		d.allow(yn, fields, "value")
		return &Literal{ExprBase: eb, Kind: literalKinds[kind], Value: d.str(yn, fields, "value")}
	case "null", "unit":
		d.allow(yn, fields)
		return &Literal{ExprBase: eb, Kind: literalKinds[kind]}
	case "unary":
		d.allow(yn, fields, "op", "operand")
		return &UnaryOp{ExprBase: eb, Op: d.str(yn, fields, "op"), Operand: d.expr(yn, fields, "operand")}
	case "binary":
		d.allow(yn, fields, "op", "lhs", "rhs")
		return &BinaryOp{
			ExprBase: eb,
			Op:       d.str(yn, fields, "op"),
			Lhs:      d.expr(yn, fields, "lhs"),
			Rhs:      d.expr(yn, fields, "rhs"),
		}
	case "if":
		d.allow(yn, fields, "cond", "then", "else")
		ie := &IfExpr{ExprBase: eb, Cond: d.expr(yn, fields, "cond"), Then: d.block(fields["then"], span)}
		if en, ok := fields["else"]; ok {
			ie.Else = d.block(en, span)
		}

		return ie
	case "while":
		d.allow(yn, fields, "cond", "body")
		return &WhileLoop{ExprBase: eb, Cond: d.expr(yn, fields, "cond"), Body: d.block(fields["body"], span)}
	case "for":
		d.allow(yn, fields, "var", "from", "to", "body")
		return &ForLoop{
			ExprBase: eb,
			Var:      d.str(yn, fields, "var"),
			From:     d.expr(yn, fields, "from"),
			To:       d.expr(yn, fields, "to"),
			Body:     d.block(fields["body"], span),
		}
	case "lambda":
		d.allow(yn, fields, "args", "body")
		return &Lambda{ExprBase: eb, Args: d.funcArgs(fields["args"], span), Body: d.block(fields["body"], span)}
	case "call":
		d.allow(yn, fields, "func", "args")
		return &Call{ExprBase: eb, Func: d.expr(yn, fields, "func"), Args: d.exprs(fields["args"])}
	case "get":
		d.allow(yn, fields, "target", "static", "name")
		target, static := d.receiver(yn, fields, span)
		return &MemberAccess{ExprBase: eb, Target: target, Static: static, Name: d.str(yn, fields, "name")}
	case "set":
		d.allow(yn, fields, "target", "static", "name", "value")
		target, static := d.receiver(yn, fields, span)
		return &MemberAssign{
			ExprBase: eb,
			Target:   target,
			Static:   static,
			Name:     d.str(yn, fields, "name"),
			Value:    d.expr(yn, fields, "value"),
		}
	case "invoke":
		d.allow(yn, fields, "target", "static", "name", "typeargs", "args")
		target, static := d.receiver(yn, fields, span)
		mc := &MemberCall{
			ExprBase: eb,
			Target:   target,
			Static:   static,
			Name:     d.str(yn, fields, "name"),
			Args:     d.exprs(fields["args"]),
		}

		for _, tn := range d.seq(fields["typeargs"]) {
			mc.TypeArgs = append(mc.TypeArgs, &TypeLabel{NodeBase: NewNodeBaseOn(span), Signature: d.scalar(tn)})
		}

		return mc
	case "new":
		d.allow(yn, fields, "type", "args")
		return &NewExpr{ExprBase: eb, Type: d.typeLabel(yn, fields, "type", span), Args: d.exprs(fields["args"])}
	case "default":
		d.allow(yn, fields, "type")
		return &DefaultExpr{ExprBase: eb, Type: d.typeLabel(yn, fields, "type", span)}
	case "ref":
		d.allow(yn, fields, "name")
		return &RefArg{ExprBase: eb, Name: d.str(yn, fields, "name")}
	default:
		d.fail(yn, "unknown node kind `%s`", kind)
		return nil
	}
}

var literalKinds = map[string]LiteralKind{
	"int":    LitInt,
	"float":  LitFloat,
	"string": LitString,
	"bool":   LitBool,
	"null":   LitNull,
	"unit":   LitUnit,
}

func (d *decoder) receiver(yn *yaml.Node, fields map[string]*yaml.Node, span *report.TextSpan) (Expr, *TypeLabel) {
	_, hasTarget := fields["target"]
	_, hasStatic := fields["static"]

	switch {
	case hasTarget && !hasStatic:
		return d.expr(yn, fields, "target"), nil
	case hasStatic && !hasTarget:
		return nil, d.typeLabel(yn, fields, "static", span)
	default:
		d.fail(yn, "member nodes need exactly one of `target` and `static`")
		return nil, nil
	}
}

func (d *decoder) block(yn *yaml.Node, span *report.TextSpan) *Block {
	return &Block{ExprBase: NewExprBase(span), Stmts: d.exprs(yn)}
}

func (d *decoder) exprs(yn *yaml.Node) []Expr {
	var exprs []Expr
	for _, en := range d.seq(yn) {
		exprs = append(exprs, d.decodeExpr(en))
	}

	return exprs
}

func (d *decoder) expr(yn *yaml.Node, fields map[string]*yaml.Node, key string) Expr {
	en, ok := fields[key]
	if !ok {
		d.fail(yn, "missing field `%s`", key)
	}

	return d.decodeExpr(en)
}

// -----------------------------------------------------------------------------

func (d *decoder) fields(yn *yaml.Node) map[string]*yaml.Node {
	if yn.Kind != yaml.MappingNode {
		d.fail(yn, "expected a mapping")
	}

	fields := make(map[string]*yaml.Node, len(yn.Content)/2)
	for i := 0; i+1 < len(yn.Content); i += 2 {
		key := yn.Content[i]
		if _, ok := fields[key.Value]; ok {
			d.fail(key, "duplicate field `%s`", key.Value)
		}

		fields[key.Value] = yn.Content[i+1]
	}

	return fields
}

// allow checks that fields only contains the given keys along with the keys
// common to all nodes.
func (d *decoder) allow(yn *yaml.Node, fields map[string]*yaml.Node, keys ...string) {
	for name := range fields {
		if name == "node" || name == "span" {
			continue
		}

		found := false
		for _, key := range keys {
			if key == name {
				found = true
				break
			}
		}

		if !found {
			d.fail(yn, "unknown field `%s`", name)
		}
	}
}

func (d *decoder) kind(yn *yaml.Node, fields map[string]*yaml.Node) string {
	return d.str(yn, fields, "node")
}

func (d *decoder) str(yn *yaml.Node, fields map[string]*yaml.Node, key string) string {
	vn, ok := fields[key]
	if !ok {
		d.fail(yn, "missing field `%s`", key)
	}

	return d.scalar(vn)
}

func (d *decoder) scalar(yn *yaml.Node) string {
	if yn.Kind != yaml.ScalarNode {
		d.fail(yn, "expected a scalar")
	}

	return yn.Value
}

func (d *decoder) boolean(fields map[string]*yaml.Node, key string) bool {
	vn, ok := fields[key]
	if !ok {
		return false
	}

	var b bool
	if err := vn.Decode(&b); err != nil {
		d.fail(vn, "expected a boolean")
	}

	return b
}

func (d *decoder) seq(yn *yaml.Node) []*yaml.Node {
	if yn == nil {
		return nil
	}

	if yn.Kind != yaml.SequenceNode {
		d.fail(yn, "expected a sequence")
	}

	return yn.Content
}

func (d *decoder) typeLabel(yn *yaml.Node, fields map[string]*yaml.Node, key string, span *report.TextSpan) *TypeLabel {
	return &TypeLabel{NodeBase: NewNodeBaseOn(span), Signature: d.str(yn, fields, key)}
}

func (d *decoder) span(fields map[string]*yaml.Node) *report.TextSpan {
	return d.spanOr(fields, nil)
}

func (d *decoder) spanOr(fields map[string]*yaml.Node, def *report.TextSpan) *report.TextSpan {
	sn, ok := fields["span"]
	if !ok {
		return def
	}

	var pos []int
	if err := sn.Decode(&pos); err != nil || len(pos) != 4 {
		d.fail(sn, "span must be a list of four integers")
	}

	return &report.TextSpan{StartLine: pos[0], StartCol: pos[1], EndLine: pos[2], EndCol: pos[3]}
}
