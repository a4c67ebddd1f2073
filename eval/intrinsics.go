package eval

import (
	"fmt"
	"hash/fnv"
	"keel/report"
	"keel/resolve"
	"math"
	"strconv"
	"strings"
)

// call is a single call of an intrinsic.
type call struct {
	e    *Evaluator
	cand *resolve.Candidate
	recv Value
	args []Value
	span *report.TextSpan
}

func (c *call) strArg(i int) string {
	s, _ := c.args[i].(string)
	return s
}

func (c *call) intArg(i int) int {
	return int(c.args[i].(int32))
}

func (c *call) delegate(i int) *Delegate {
	d, _ := c.args[i].(*Delegate)
	return d
}

func (c *call) invoke(d *Delegate, args ...Value) Value {
	return c.e.callDelegate(d, args, c.span)
}

// intrinsics maps intrinsic names to their implementations.
var intrinsics map[string]func(c *call) Value

func init() {
	intrinsics = map[string]func(c *call) Value{
		"Object.New": func(c *call) Value {
			return newObject(c.cand.Owner)
		},
		"Object.ToString": func(c *call) Value {
			return FormatValue(c.recv)
		},
		"Object.Equals": func(c *call) Value {
			return valuesEqual(c.recv, c.args[0])
		},
		"Object.GetHashCode": func(c *call) Value {
			h := fnv.New32a()
			h.Write([]byte(fmt.Sprintf("%T:%s", c.recv, FormatValue(c.recv))))
			return int32(h.Sum32())
		},
		"Int32.Parse": func(c *call) Value {
			n, err := strconv.ParseInt(strings.TrimSpace(c.strArg(0)), 10, 32)
			if err != nil {
				throw(c.span, "`%s` is not a valid int", c.strArg(0))
			}

			return int32(n)
		},
		"Int64.Parse": func(c *call) Value {
			n, err := strconv.ParseInt(strings.TrimSpace(c.strArg(0)), 10, 64)
			if err != nil {
				throw(c.span, "`%s` is not a valid long", c.strArg(0))
			}

			return n
		},
		"Double.Parse": func(c *call) Value {
			f, err := strconv.ParseFloat(strings.TrimSpace(c.strArg(0)), 64)
			if err != nil {
				throw(c.span, "`%s` is not a valid double", c.strArg(0))
			}

			return f
		},

		"String.Length": func(c *call) Value {
			return int32(len([]rune(c.recv.(string))))
		},
		"String.Concat": func(c *call) Value {
			return c.strArg(0) + c.strArg(1)
		},
		"String.IsNullOrEmpty": func(c *call) Value {
			return c.strArg(0) == ""
		},
		"String.ToUpper": func(c *call) Value {
			return strings.ToUpper(c.recv.(string))
		},
		"String.ToLower": func(c *call) Value {
			return strings.ToLower(c.recv.(string))
		},
		"String.Trim": func(c *call) Value {
			return strings.TrimSpace(c.recv.(string))
		},
		"String.Substring": func(c *call) Value {
			runes := []rune(c.recv.(string))
			start, n := c.intArg(0), c.intArg(1)
			if start < 0 || n < 0 || start+n > len(runes) {
				throw(c.span, "substring (%d, %d) is out of range", start, n)
			}

			return string(runes[start : start+n])
		},
		"String.Contains": func(c *call) Value {
			return strings.Contains(c.recv.(string), c.strArg(0))
		},

		"Nullable.New": func(c *call) Value {
			return c.args[0]
		},
		"Nullable.HasValue": func(c *call) Value {
			return c.recv != nil
		},
		"Nullable.Value": func(c *call) Value {
			if c.recv == nil {
				throw(c.span, "nullable value is null")
			}

			return c.recv
		},
		"Array.Length": func(c *call) Value {
			return int32(len(c.recv.(*Array).Elems))
		},

		"Math.Max": func(c *call) Value {
			if a, ok := c.args[0].(int32); ok {
				if b := c.args[1].(int32); b > a {
					return b
				}

				return a
			}

			return math.Max(c.args[0].(float64), c.args[1].(float64))
		},
		"Math.Min": func(c *call) Value {
			if a, ok := c.args[0].(int32); ok {
				if b := c.args[1].(int32); b < a {
					return b
				}

				return a
			}

			return math.Min(c.args[0].(float64), c.args[1].(float64))
		},
		"Math.Abs": func(c *call) Value {
			if a, ok := c.args[0].(int32); ok {
				if a < 0 {
					return -a
				}

				return a
			}

			return math.Abs(c.args[0].(float64))
		},
		"Math.Sqrt": func(c *call) Value {
			return math.Sqrt(c.args[0].(float64))
		},
		"Math.Pow": func(c *call) Value {
			return math.Pow(c.args[0].(float64), c.args[1].(float64))
		},

		"Console.WriteLine": func(c *call) Value {
			fmt.Fprintln(c.e.out, FormatValue(c.args[0]))
			return nil
		},
		"Console.Write": func(c *call) Value {
			fmt.Fprint(c.e.out, FormatValue(c.args[0]))
			return nil
		},

		"List.New": func(c *call) Value {
			return &List{}
		},
		"List.Count": func(c *call) Value {
			return int32(len(c.recv.(*List).Items))
		},
		"List.Add": func(c *call) Value {
			l := c.recv.(*List)
			l.Items = append(l.Items, c.args[0])
			return nil
		},
		"List.Contains": func(c *call) Value {
			return containsValue(c.recv.(*List).Items, c.args[0])
		},
		"List.Clear": func(c *call) Value {
			c.recv.(*List).Items = nil
			return nil
		},
		"List.RemoveAt": func(c *call) Value {
			l := c.recv.(*List)
			i := c.listIndex(l)
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return nil
		},
		"List.GetItem": func(c *call) Value {
			l := c.recv.(*List)
			return l.Items[c.listIndex(l)]
		},
		"List.SetItem": func(c *call) Value {
			l := c.recv.(*List)
			l.Items[c.listIndex(l)] = c.args[1]
			return nil
		},

		"Dictionary.New": func(c *call) Value {
			return &Dictionary{values: make(map[Value]Value)}
		},
		"Dictionary.Count": func(c *call) Value {
			return int32(len(c.recv.(*Dictionary).keys))
		},
		"Dictionary.Add": func(c *call) Value {
			d := c.recv.(*Dictionary)
			if _, ok := d.values[c.args[0]]; ok {
				throw(c.span, "key `%s` is already present", FormatValue(c.args[0]))
			}

			d.keys = append(d.keys, c.args[0])
			d.values[c.args[0]] = c.args[1]
			return nil
		},
		"Dictionary.ContainsKey": func(c *call) Value {
			_, ok := c.recv.(*Dictionary).values[c.args[0]]
			return ok
		},
		"Dictionary.GetItem": func(c *call) Value {
			v, ok := c.recv.(*Dictionary).values[c.args[0]]
			if !ok {
				throw(c.span, "key `%s` is not present", FormatValue(c.args[0]))
			}

			return v
		},
		"Dictionary.SetItem": func(c *call) Value {
			d := c.recv.(*Dictionary)
			if _, ok := d.values[c.args[0]]; !ok {
				d.keys = append(d.keys, c.args[0])
			}

			d.values[c.args[0]] = c.args[1]
			return nil
		},

		"StringBuilder.New": func(c *call) Value {
			return &strings.Builder{}
		},
		"StringBuilder.Length": func(c *call) Value {
			return int32(c.recv.(*strings.Builder).Len())
		},
		"StringBuilder.Append": func(c *call) Value {
			sb := c.recv.(*strings.Builder)
			sb.WriteString(FormatValue(c.args[0]))
			return sb
		},
		"StringBuilder.ToString": func(c *call) Value {
			return c.recv.(*strings.Builder).String()
		},

		"Delegate.Invoke": func(c *call) Value {
			d, _ := c.recv.(*Delegate)
			return c.invoke(d, c.args...)
		},

		"Enumerable.Count": func(c *call) Value {
			return int32(len(items(c.args[0])))
		},
		"Enumerable.Sum": func(c *call) Value {
			var sum int32
			for _, v := range items(c.args[0]) {
				sum += v.(int32)
			}

			return sum
		},
		"Enumerable.First": func(c *call) Value {
			elems := items(c.args[0])
			if len(elems) == 0 {
				throw(c.span, "sequence contains no elements")
			}

			return elems[0]
		},
		"Enumerable.Contains": func(c *call) Value {
			return containsValue(items(c.args[0]), c.args[1])
		},
		"Enumerable.ToList": func(c *call) Value {
			return &List{Items: append([]Value(nil), items(c.args[0])...)}
		},
		"Enumerable.ToArray": func(c *call) Value {
			return &Array{Elems: append([]Value(nil), items(c.args[0])...)}
		},
		"Enumerable.Where": func(c *call) Value {
			pred := c.delegate(1)

			seq := &Sequence{}
			for _, v := range items(c.args[0]) {
				if c.invoke(pred, v).(bool) {
					seq.Items = append(seq.Items, v)
				}
			}

			return seq
		},
		"Enumerable.Select": func(c *call) Value {
			fn := c.delegate(1)

			seq := &Sequence{}
			for _, v := range items(c.args[0]) {
				seq.Items = append(seq.Items, c.invoke(fn, v))
			}

			return seq
		},
		"Enumerable.Empty": func(c *call) Value {
			return &Sequence{}
		},
		"Enumerable.Range": func(c *call) Value {
			start, n := c.args[0].(int32), c.intArg(1)
			if n < 0 {
				throw(c.span, "range count must not be negative")
			}

			seq := &Sequence{Items: make([]Value, n)}
			for i := range seq.Items {
				seq.Items[i] = start + int32(i)
			}

			return seq
		},
	}
}

func (c *call) listIndex(l *List) int {
	i := c.intArg(0)
	if i < 0 || i >= len(l.Items) {
		throw(c.span, "index %d is out of range", i)
	}

	return i
}

func containsValue(vals []Value, v Value) bool {
	for _, item := range vals {
		if valuesEqual(item, v) {
			return true
		}
	}

	return false
}
