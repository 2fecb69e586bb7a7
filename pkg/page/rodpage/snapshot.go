package rodpage

// snapshotJS walks the DOM for visible interactive elements and structural
// facts. Selector generation prefers stable anchors (id, name) and falls back
// to class-based then positional selectors, the same strategy browsers'
// "copy selector" uses.
const snapshotJS = `() => {
	function isValidIdent(s) {
		if (!s || s.length === 0) return false;
		if (/^[0-9]/.test(s)) return false;
		if (/^-[0-9]/.test(s)) return false;
		if (/[.:#\[\]()>~+*\/\\]/.test(s)) return false;
		return true;
	}

	function getSelector(el) {
		if (el.id && isValidIdent(el.id)) return '#' + el.id;
		if (el.name) return '[name="' + el.name + '"]';
		if (el.className && typeof el.className === 'string') {
			const classes = el.className.trim().split(/\s+/).filter(isValidIdent).slice(0, 2);
			if (classes.length > 0) {
				const sel = el.tagName.toLowerCase() + '.' + classes.join('.');
				try {
					if (document.querySelectorAll(sel).length === 1) return sel;
				} catch (e) {}
			}
		}
		const parent = el.parentElement;
		if (parent && parent !== document.documentElement) {
			const index = Array.from(parent.children).indexOf(el) + 1;
			const parentSel = getSelector(parent);
			if (parentSel) {
				return parentSel + ' > ' + el.tagName.toLowerCase() + ':nth-child(' + index + ')';
			}
		}
		return el.tagName.toLowerCase();
	}

	function attrsOf(el, names) {
		const out = {};
		for (const n of names) {
			const v = el.getAttribute(n);
			if (v) out[n] = v;
		}
		return out;
	}

	function boundsOf(el) {
		const r = el.getBoundingClientRect();
		return { x: r.x, y: r.y, w: r.width, h: r.height };
	}

	const clickable = [];
	const formFields = [];
	const seen = new Set();

	document.querySelectorAll('button, [role="button"], input[type="submit"], input[type="button"]').forEach(el => {
		if (!el.offsetParent) return;
		const selector = getSelector(el);
		if (seen.has(selector)) return;
		seen.add(selector);
		const b = boundsOf(el);
		clickable.push({
			kind: 'button',
			text: (el.textContent || el.value || '').trim(),
			selector: selector,
			attrs: attrsOf(el, ['id', 'name', 'type', 'aria-label', 'title']),
			x: b.x, y: b.y, w: b.w, h: b.h
		});
	});

	document.querySelectorAll('a[href]').forEach(el => {
		if (!el.offsetParent) return;
		const selector = getSelector(el);
		if (seen.has(selector)) return;
		seen.add(selector);
		const b = boundsOf(el);
		clickable.push({
			kind: 'link',
			text: (el.textContent || '').trim(),
			selector: selector,
			attrs: attrsOf(el, ['id', 'href', 'aria-label', 'title']),
			x: b.x, y: b.y, w: b.w, h: b.h
		});
	});

	document.querySelectorAll('input:not([type="hidden"]):not([type="submit"]):not([type="button"]), textarea, select').forEach(el => {
		if (!el.offsetParent) return;
		const selector = getSelector(el);
		if (seen.has(selector)) return;
		seen.add(selector);
		const b = boundsOf(el);
		formFields.push({
			kind: 'input',
			text: (el.labels && el.labels.length ? el.labels[0].textContent : '').trim(),
			selector: selector,
			attrs: attrsOf(el, ['id', 'name', 'type', 'placeholder', 'value', 'aria-label']),
			x: b.x, y: b.y, w: b.w, h: b.h
		});
	});

	const headings = [];
	document.querySelectorAll('h1, h2, h3').forEach(el => {
		const t = (el.textContent || '').trim();
		if (t) headings.push(t);
	});

	return {
		url: window.location.href,
		title: document.title,
		visibleText: (document.body ? document.body.innerText : '').trim(),
		headings: headings.slice(0, 20),
		formCount: document.querySelectorAll('form').length,
		imageCount: document.querySelectorAll('img').length,
		hasNav: !!document.querySelector('nav, [role="navigation"]'),
		clickable: clickable,
		formFields: formFields
	};
}`
