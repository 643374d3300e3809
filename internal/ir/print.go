package ir

import (
	"fmt"
	"strings"
)

// Print renders an expression as an indented s-expression-flavored dump,
// the format the pipeline's verbose diagnostics and the CLI's phase
// output use (generalizing the teacher's internal/core print.go, which dumps
// Core the same way for its own golden tests).
func Print(e Expr) string {
	var b strings.Builder
	printExpr(&b, e, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func printExpr(b *strings.Builder, e Expr, depth int) {
	indent(b, depth)
	if e == nil {
		b.WriteString("<nil>\n")
		return
	}
	switch x := e.(type) {
	case *Lit:
		fmt.Fprintf(b, "(lit %v : %s)\n", x.Value, x.Typ())
	case *Var:
		fmt.Fprintf(b, "(var %s : %s)\n", x.Name, x.Typ())
	case *PrimOp:
		fmt.Fprintf(b, "(primop %s : %s)\n", x.Name, x.Typ())
	case *UnOp:
		fmt.Fprintf(b, "(unop %s\n", x.Op)
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *BinOp:
		fmt.Fprintf(b, "(binop %s\n", x.Op)
		printExpr(b, x.Left, depth+1)
		printExpr(b, x.Right, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *RelOp:
		fmt.Fprintf(b, "(relop %s\n", x.Op)
		printExpr(b, x.Left, depth+1)
		printExpr(b, x.Right, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *ShowOp:
		b.WriteString("(show\n")
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *TupleE:
		b.WriteString("(tuple\n")
		for _, el := range x.Elems {
			printExpr(b, el, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *ProjE:
		fmt.Fprintf(b, "(proj %d\n", x.Index)
		printExpr(b, x.Tuple, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *OptE:
		if x.Arg == nil {
			b.WriteString("(none)\n")
		} else {
			b.WriteString("(some\n")
			printExpr(b, x.Arg, depth+1)
			indent(b, depth)
			b.WriteString(")\n")
		}
	case *VariantE:
		fmt.Fprintf(b, "(variant #%s\n", x.Ctor)
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *DotE:
		fmt.Fprintf(b, "(dot .%s\n", x.Field)
		printExpr(b, x.Record, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *ActorDotE:
		fmt.Fprintf(b, "(actor-dot .%s\n", x.Field)
		printExpr(b, x.Actor, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *ArrayE:
		fmt.Fprintf(b, "(array mut=%v\n", x.Mut)
		for _, el := range x.Elems {
			printExpr(b, el, depth+1)
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *IdxE:
		b.WriteString("(idx\n")
		printExpr(b, x.Array, depth+1)
		printExpr(b, x.Index, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *AssignE:
		b.WriteString("(assign\n")
		printExpr(b, x.Target, depth+1)
		printExpr(b, x.Source, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *FuncE:
		fmt.Fprintf(b, "(func %s : %s\n", x.Sort, x.Typ())
		printExpr(b, x.Body, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *CallE:
		b.WriteString("(call\n")
		printExpr(b, x.Func, depth+1)
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *BlockE:
		b.WriteString("(block\n")
		for _, d := range x.Decls {
			printDecl(b, d, depth+1)
		}
		printExpr(b, x.Result, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *IfE:
		b.WriteString("(if\n")
		printExpr(b, x.Cond, depth+1)
		printExpr(b, x.Then, depth+1)
		printExpr(b, x.Else, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *SwitchE:
		b.WriteString("(switch\n")
		printExpr(b, x.Scrutinee, depth+1)
		for _, arm := range x.Arms {
			indent(b, depth+1)
			b.WriteString("(arm\n")
			printExpr(b, arm.Body, depth+2)
			indent(b, depth+1)
			b.WriteString(")\n")
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *LoopE:
		b.WriteString("(loop\n")
		printExpr(b, x.Body, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *LabelE:
		fmt.Fprintf(b, "(label %s\n", x.Label)
		printExpr(b, x.Body, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *BreakE:
		fmt.Fprintf(b, "(break %s\n", x.Label)
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *RetE:
		b.WriteString("(ret\n")
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *AsyncE:
		b.WriteString("(async\n")
		printExpr(b, x.Body, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *AwaitE:
		b.WriteString("(await\n")
		printExpr(b, x.Arg, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *AssertE:
		b.WriteString("(assert\n")
		printExpr(b, x.Cond, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *ActorE:
		b.WriteString("(actor\n")
		for _, d := range x.Decls {
			printDecl(b, d, depth+1)
		}
		for _, f := range x.Fields {
			indent(b, depth+1)
			fmt.Fprintf(b, "(field %s\n", f.Label)
			printExpr(b, f.Value, depth+2)
			indent(b, depth+1)
			b.WriteString(")\n")
		}
		indent(b, depth)
		b.WriteString(")\n")
	case *ObjE:
		fmt.Fprintf(b, "(obj %s\n", x.Sort)
		for _, f := range x.Fields {
			indent(b, depth+1)
			fmt.Fprintf(b, "(field %s\n", f.Label)
			printExpr(b, f.Value, depth+2)
			indent(b, depth+1)
			b.WriteString(")\n")
		}
		indent(b, depth)
		b.WriteString(")\n")
	default:
		fmt.Fprintf(b, "(?unknown-expr %T)\n", e)
	}
}

func printDecl(b *strings.Builder, d Decl, depth int) {
	indent(b, depth)
	switch x := d.(type) {
	case *LetDecl:
		b.WriteString("(let\n")
		printExpr(b, x.Value, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *VarDecl:
		fmt.Fprintf(b, "(var %s\n", x.Name)
		printExpr(b, x.Value, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	case *TypeDecl:
		fmt.Fprintf(b, "(type %s)\n", x.Name)
	case *DeclareD:
		fmt.Fprintf(b, "(declare %s : %s)\n", x.Name, x.Type)
	case *DefineD:
		fmt.Fprintf(b, "(define %s mut=%v\n", x.Name, x.Mut)
		printExpr(b, x.Value, depth+1)
		indent(b, depth)
		b.WriteString(")\n")
	default:
		fmt.Fprintf(b, "(?unknown-decl %T)\n", d)
	}
}
