package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbjs-dev/rbjs/errors"
)

func TestHandlers(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   []Option
		want   []string
	}{
		{
			name:   "literals",
			source: `(array (nil) (true) (false) (self) (int 42) (float 1.5) (str "a") (sym :b))`,
			want:   []string{`return [nil, true, false, self, 42, 1.5, "a", "b"];`},
		},
		{
			name:   "hash",
			source: `(hash (pair (sym :a) (int 1)) (pair (str "b") (int 2)))`,
			want:   []string{`return $hash("a", 1, "b", 2);`, "$hash = RB.hash"},
		},
		{
			name:   "interpolation",
			source: `(dstr (str "a") (lvar :b))`,
			want:   []string{`return "a" + (b).$to_s();`, `RB.add_stubs("to_s");`},
		},
		{
			name:   "interpolation first",
			source: `(dstr (lvar :b) (str "!"))`,
			want:   []string{`return "" + (b).$to_s() + "!";`},
		},
		{
			name:   "instance variables",
			source: "(ivasgn :@a (int 1))\n(ivar :@a)",
			want:   []string{"self.a = 1;", "return self.a;"},
		},
		{
			name:   "global variables",
			source: `(gvasgn :$out (gvar :$stdout))`,
			want:   []string{`return ($gvars["out"] = $gvars["stdout"]);`, "$gvars = RB.gvars"},
		},
		{
			name:   "reserved local",
			source: `(lvasgn :function (int 1))`,
			want:   []string{"return (function$ = 1);", "function$ = nil"},
		},
		{
			name:   "constants",
			source: "(casgn nil :X (int 1))\n(const (const nil :A) :B)",
			want: []string{
				`$const_set(RB.Object, "X", 1);`,
				`return $const_get($const_get($nesting, "A"), "B");`,
			},
		},
		{
			name:   "inline operator",
			source: `(send (int 1) :+ (int 2))`,
			want:   []string{"return $rb_plus(1, 2);", "$rb_plus = RB.rb_plus"},
		},
		{
			name:   "operator call",
			source: `(send (int 1) :+ (int 2))`,
			opts:   []Option{WithOption("inline_operators", false)},
			want:   []string{`return (1)["$+"](2);`},
		},
		{
			name:   "predicate call",
			source: `(send (lvar :a) :empty?)`,
			want:   []string{`return a["$empty?"]();`},
		},
		{
			name:   "block",
			source: `(block (send (lvar :list) :each) (args (arg :x)) (send nil :puts (lvar :x)))`,
			want: []string{
				"return $send(list, \"$each\", [], function $$1(x) {\n" +
					"    if (x == null) x = nil;\n" +
					"    return self.$puts(x);\n" +
					"  });",
				"$send = RB.send",
			},
		},
		{
			name:   "block with break",
			source: `(block (send (lvar :list) :each) (args (arg :x)) (break (lvar :x)))`,
			want: []string{
				"return $catch_break(function($brk) {\n" +
					"    return $send(list, \"$each\", [], function $$1(x) {\n" +
					"      if (x == null) x = nil;\n" +
					"      $break(x, $brk);\n" +
					"    });\n" +
					"  });",
			},
		},
		{
			name:   "next in block",
			source: `(block (send (lvar :list) :map) (args (arg :x)) (if (lvar :x) (next (int 1)) nil))`,
			want:   []string{"if ($truthy(x)) {\n      return 1;\n    } else {\n      return nil;\n    }"},
		},
		{
			name:   "redo in block",
			source: `(block (send nil :loop) (args) (redo))`,
			want:   []string{"return $$1.apply(null, arguments);"},
		},
		{
			name:   "block pass",
			source: `(send (lvar :list) :map (block_pass (sym :upcase)))`,
			want:   []string{`return $send(list, "$map", [], $to_proc("upcase"));`},
		},
		{
			name:   "anonymous block pass",
			source: `(def :f nil (send nil :g (block_pass nil)))`,
			want:   []string{`return $send(self, "$g", [], $yield);`, "var self = this, $yield = $$f.$$p || nil;"},
		},
		{
			name:   "if chain",
			source: `(if (lvar :a) (int 1) (if (lvar :b) (int 2) (int 3)))`,
			want: []string{
				"if ($truthy(a)) {\n" +
					"    return 1;\n" +
					"  } else if ($truthy(b)) {\n" +
					"    return 2;\n" +
					"  } else {\n" +
					"    return 3;\n" +
					"  }",
			},
		},
		{
			name:   "unless",
			source: "(if (lvar :a) nil (send nil :foo))\n(nil)",
			want:   []string{"if (!$truthy(a)) {\n    self.$foo();\n  }"},
		},
		{
			name:   "conditional expression",
			source: `(send nil :p (if (lvar :a) (int 1) (int 2)))`,
			want:   []string{"return self.$p(($truthy(a) ? 1 : 2));"},
		},
		{
			name:   "and statement",
			source: "(and (lvar :a) (send nil :foo))\n(nil)",
			want:   []string{"if ($truthy(a)) {\n    self.$foo();\n  }"},
		},
		{
			name:   "or statement",
			source: "(or (lvar :a) (send nil :foo))\n(nil)",
			want:   []string{"if (!$truthy(a)) {\n    self.$foo();\n  }"},
		},
		{
			name:   "or expression",
			source: `(lvasgn :x (or (lvar :a) (int 1)))`,
			want:   []string{"return (x = ($truthy($a = a) ? $a : 1));", "x = nil, $a;"},
		},
		{
			name:   "and expression",
			source: `(lvasgn :x (and (lvar :a) (int 1)))`,
			want:   []string{"return (x = ($truthy($a = a) ? 1 : $a));"},
		},
		{
			name:   "until",
			source: "(until (lvar :done) (send nil :step))\n(nil)",
			want:   []string{"while (!$truthy(done)) {\n    self.$step();\n  }"},
		},
		{
			name:   "do while",
			source: "(while_post (lvar :more) (kwbegin (send nil :step)))\n(nil)",
			want:   []string{"do {\n    self.$step();\n  } while ($truthy(more));"},
		},
		{
			name:   "next in loop",
			source: "(while (true) (next))\n(nil)",
			want:   []string{"while ($truthy(true)) {\n    continue;\n  }"},
		},
		{
			name:   "redo in loop",
			source: "(while (true) (redo))\n(nil)",
			want: []string{
				"$a = false;\n" +
					"  while ($a || $truthy(true)) {\n" +
					"    $a = false;\n" +
					"    $a = true; continue;\n" +
					"  }",
			},
		},
		{
			name:   "case",
			source: `(case (lvar :x) (when (int 1) (str "one")) (when (int 2) (int 3) (str "small")) (str "many"))`,
			want: []string{
				"$a = x;\n" +
					"  if ($eqeqeq(1, $a)) {\n" +
					"    return \"one\";\n" +
					"  } else if ($eqeqeq(2, $a) || $eqeqeq(3, $a)) {\n" +
					"    return \"small\";\n" +
					"  } else {\n" +
					"    return \"many\";\n" +
					"  }",
				"$eqeqeq = RB.eqeqeq",
			},
		},
		{
			name:   "case without subject",
			source: `(case nil (when (lvar :a) (int 1)) nil)`,
			want:   []string{"if ($truthy(a)) {\n    return 1;\n  } else {\n    return nil;\n  }"},
		},
		{
			name:   "case expression",
			source: `(lvasgn :y (case (lvar :x) (when (int 1) (int 2)) nil))`,
			want: []string{
				"return (y = (function() {\n" +
					"    $a = x;\n" +
					"    if ($eqeqeq(1, $a)) {\n" +
					"      return 2;\n" +
					"    } else {\n" +
					"      return nil;\n" +
					"    }\n" +
					"  })());",
			},
		},
		{
			name:   "rescue",
			source: `(kwbegin (rescue (send nil :risky) (resbody (array (const nil :IOError)) (lvasgn :e) (send nil :handle (lvar :e))) nil))`,
			want: []string{
				"try {\n" +
					"    return self.$risky();\n" +
					"  } catch ($err) {\n" +
					"    if ($rescue($err, [$const_get($nesting, \"IOError\")])) {\n" +
					"      e = $err;\n" +
					"      return self.$handle(e);\n" +
					"    } else {\n" +
					"      throw $err;\n" +
					"    }\n" +
					"  }",
				"e = nil",
			},
		},
		{
			name:   "rescue else",
			source: `(kwbegin (rescue (send nil :a) (resbody nil nil (nil)) (send nil :b)))`,
			want: []string{
				"$a = true;\n  try {",
				"} catch ($err) {\n    $a = false;\n    if ($rescue($err, [RB.StandardError])) {",
				"\n  } finally {\n    if ($a) {\n      return self.$b();\n    }\n  }",
			},
		},
		{
			name:   "retry",
			source: `(kwbegin (rescue (send nil :risky) (resbody nil nil (retry)) nil))`,
			want: []string{
				"$retry$1: do {\n    $a = false;\n    try {",
				"if ($rescue($err, [RB.StandardError])) {\n        $a = true; continue $retry$1;\n      }",
				"\n  } while ($a);",
			},
		},
		{
			name:   "rescue expression",
			source: `(lvasgn :x (rescue (send nil :a) (resbody nil nil (int 1)) nil))`,
			want:   []string{"return (x = (function() {\n    try {\n      return self.$a();"},
		},
		{
			name:   "ensure",
			source: `(kwbegin (ensure (send nil :a) (send nil :b)))`,
			want:   []string{"try {\n    return self.$a();\n  } finally {\n    self.$b();\n  }"},
		},
		{
			name:   "def with parameters",
			source: `(def :foo (args (arg :a) (optarg :b (int 1)) (restarg :c) (blockarg :blk)) (lvar :a))`,
			opts:   []Option{WithOption("arity_check", true)},
			want: []string{
				"return $def(self, \"$foo\", function $$foo(a, b) {\n" +
					"    var self = this, blk = $$foo.$$p || nil, c = nil;\n" +
					"    $$foo.$$p = null;\n" +
					"    if (arguments.length < 1) $ac(arguments.length, -2, self, \"foo\");\n" +
					"    if (b == null) b = 1;\n" +
					"    c = $slice(arguments, 2);\n" +
					"    return a;\n" +
					"  }, -2);",
			},
		},
		{
			name:   "exact arity",
			source: `(def :pair (args (arg :a) (arg :b)) nil)`,
			opts:   []Option{WithOption("arity_check", true)},
			want:   []string{`if (arguments.length !== 2) $ac(arguments.length, 2, self, "pair");`},
		},
		{
			name:   "optional arity",
			source: `(def :opt (args (optarg :a (nil))) nil)`,
			opts:   []Option{WithOption("arity_check", true)},
			want:   []string{`if (arguments.length > 1) $ac(arguments.length, -1, self, "opt");`},
		},
		{
			name:   "predicate method",
			source: `(def :ok? nil (true))`,
			want:   []string{`return $def(self, "$ok?", function $ok$ques$1() {`},
		},
		{
			name:   "yield",
			source: `(def :twice nil (yield (int 1)))`,
			want: []string{
				"var self = this, $yield = $$twice.$$p || nil;\n" +
					"    $$twice.$$p = null;\n" +
					"    return $yield1($yield, 1);",
			},
		},
		{
			name:   "yield several",
			source: `(def :pair nil (yield (int 1) (int 2)))`,
			want:   []string{"return $yieldX($yield, [1, 2]);"},
		},
		{
			name:   "block given",
			source: `(def :f nil (send nil :block_given?))`,
			want:   []string{"return ($yield !== nil);"},
		},
		{
			name:   "return from block",
			source: `(def :find nil (block (send (lvar :list) :each) (args (arg :x)) (return (lvar :x))))`,
			want: []string{
				"try {\n      return $send(list, \"$each\", [], function $$1(x) {",
				"$ret(x);",
				"} catch ($returner) {\n" +
					"      if ($returner === RB.returner) { return $returner.$v; }\n" +
					"      throw $returner;\n" +
					"    }",
			},
		},
		{
			name:   "source location",
			source: `(def :foo nil nil)`,
			opts:   []Option{WithFile("a.rb"), WithOption("enable_source_location", true)},
			want:   []string{`}, 0, {"source_location":["a.rb",1]});`},
		},
		{
			name:   "comments",
			source: "# Says hi.\n# Twice.\n(def :hi nil nil)",
			opts:   []Option{WithOption("parse_comments", true)},
			want:   []string{`}, 0, {"comments":["# Says hi.","# Twice."]});`},
		},
		{
			name:   "class",
			source: `(class (const nil :Foo) (const nil :Bar) (def :x nil nil))`,
			want: []string{
				"return (function($base, $super, $parent_nesting) {\n" +
					"    var self = $klass($base, $super, \"Foo\"), $nesting = [self].concat($parent_nesting);\n" +
					"    return $def(self, \"$x\", function $$x() {\n" +
					"      var self = this;\n" +
					"      return nil;\n" +
					"    }, 0);\n" +
					"  })(RB.Object, $const_get($nesting, \"Bar\"), $nesting);",
			},
		},
		{
			name:   "module",
			source: `(module (const nil :M) (casgn nil :X (int 1)))`,
			want: []string{
				"return (function($base, $parent_nesting) {\n" +
					"    var self = $module($base, \"M\"), $nesting = [self].concat($parent_nesting);\n" +
					"    return $const_set(self, \"X\", 1);\n" +
					"  })(RB.Object, $nesting);",
			},
		},
		{
			name:   "undef",
			source: "(undef (sym :a) (sym :b))",
			want:   []string{"$udef(self, \"$a\");\n  $udef(self, \"$b\");\n  return nil;"},
		},
		{
			name:   "undef expression",
			source: `(lvasgn :x (undef (sym :a)))`,
			want:   []string{`return (x = ($udef(self, "$a"), nil));`},
		},
		{
			name:   "embedded javascript",
			source: `(xstr (str "console.log(1)"))`,
			opts:   []Option{WithOption("backtick_javascript", true)},
			want:   []string{"return console.log(1);"},
		},
		{
			name:   "embedded javascript statement",
			source: "(xstr (str \"if (a) { b() }\"))\n(nil)",
			opts:   []Option{WithOption("backtick_javascript", true)},
			want:   []string{"\n  if (a) { b() }\n  return nil;"},
		},
		{
			name:   "backtick call",
			source: `(xstr (str "ls"))`,
			opts:   []Option{WithOption("backtick_javascript", false)},
			want:   []string{"\n  self[\"$`\"](\"ls\");", "RB.add_stubs(\"`\");"},
		},
		{
			name:   "debugger",
			source: `(send nil :debugger)`,
			want:   []string{"debugger;\n  return nil;"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := compile(t, tt.source, tt.opts...)
			for _, want := range tt.want {
				require.Contains(t, result, want)
			}
		})
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   errors.ErrorCode
	}{
		{"yield outside method", "(yield)", errors.E2003},
		{"block pass outside method", "(send nil :f (block_pass nil))", errors.E2003},
		{"break as value", "(while (true) (lvasgn :x (break)))\n(nil)", errors.E2004},
		{"return as value", "(lvasgn :x (return (int 1)))", errors.E2004},
		{"when outside case", "(when (int 1) (int 2))", errors.E2006},
		{"rescue clause outside begin", "(resbody nil nil (nil))", errors.E2006},
		{"hash without pairs", "(hash (int 1))", errors.E2006},
		{"int without value", "(int)", errors.E2006},
		{"def without name", "(def nil nil nil)", errors.E2006},
		{"class without constant", "(class (lvar :a) nil nil)", errors.E2006},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := compileError(t, tt.source)
			require.Equal(t, tt.code, ce.Code, ce.Error())
		})
	}
}
